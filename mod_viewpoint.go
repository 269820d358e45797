package strata

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strata3d/strata/voxel/chunk"
)

// Viewpoint is the position the world streams around and the direction it
// is being looked in. The host application moves it; the world systems only
// read it.
type Viewpoint struct {
	Position mgl32.Vec3
	Forward  mgl32.Vec3
}

// SetLookAngles points Forward along yaw and pitch, in degrees. Pitch is
// clamped to ±89 so Forward never degenerates to straight up or down.
func (v *Viewpoint) SetLookAngles(yaw, pitch float32) {
	if pitch > 89.0 {
		pitch = 89.0
	}
	if pitch < -89.0 {
		pitch = -89.0
	}

	yawRad := mgl32.DegToRad(yaw)
	pitchRad := mgl32.DegToRad(pitch)

	v.Forward = mgl32.Vec3{
		float32(math.Sin(float64(yawRad)) * math.Cos(float64(pitchRad))),
		float32(math.Sin(float64(pitchRad))),
		float32(-math.Cos(float64(yawRad)) * math.Cos(float64(pitchRad))),
	}.Normalize()
}

// Chunk returns the chunk coordinate the viewpoint is currently inside.
func (v *Viewpoint) Chunk() chunk.Coord {
	return chunk.CoordAt(v.Position)
}

// ViewpointModule installs the viewpoint resource.
type ViewpointModule struct {
	Position   mgl32.Vec3
	Yaw, Pitch float32
}

func (m ViewpointModule) Install(app *App, cmd *Commands) {
	vp := &Viewpoint{Position: m.Position}
	vp.SetLookAngles(m.Yaw, m.Pitch)
	cmd.AddResources(vp)
}

// FlightPathModule flies the viewpoint through a loop of waypoints, looking
// along the direction of travel. It stands in for player input in headless
// runs; install it before the world module so the viewpoint moves ahead of
// chunk discovery in the frame.
type FlightPathModule struct {
	Waypoints []mgl32.Vec3
	Speed     float32
}

func (m FlightPathModule) Install(app *App, cmd *Commands) {
	if len(m.Waypoints) < 2 {
		panic("Flight path needs at least two waypoints")
	}
	speed := m.Speed
	if speed <= 0 {
		speed = 24
	}
	cmd.AddResources(&flightPath{waypoints: m.Waypoints, speed: speed})
	cmd.UseSystem(System(flightSystem).InStage(PreUpdate))
}

type flightPath struct {
	waypoints []mgl32.Vec3
	speed     float32
	next      int
}

func flightSystem(path *flightPath, vp *Viewpoint, timeResource *Time) {
	dt := timeResource.Dt
	if dt <= 0 {
		return
	}

	target := path.waypoints[path.next]
	to := target.Sub(vp.Position)
	step := path.speed * dt

	if to.Len() <= step {
		vp.Position = target
		path.next = (path.next + 1) % len(path.waypoints)
		return
	}

	dir := to.Normalize()
	vp.Position = vp.Position.Add(dir.Mul(step))
	vp.Forward = dir
}

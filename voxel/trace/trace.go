// Package trace marches rays through the block grid of a chunk store.
//
// The march works the grid hierarchically: chunks with no published data
// and chunks known to be empty are crossed in a single step, everything
// else advances cell by cell. Distances are world units; one block is one
// unit of length.
package trace

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strata3d/strata/voxel/chunk"
)

// Hit is the first non-Air cell a ray touched.
type Hit struct {
	Hit      bool
	T        float32 // distance from the ray origin, world units
	Block    [3]int  // world block coordinate of the cell
	Material chunk.Block
	Normal   mgl32.Vec3 // axis-aligned normal of the entered face
}

const (
	// A component this small would blow up the inverse direction, so it
	// gets clamped instead of inverted.
	minDirComponent = 1e-7

	maxIterations = 10000
)

// March casts a ray from origin along dir and returns the first solid
// cell within tMax world units. Water counts as solid; callers that want
// to shoot through it can resume from the hit. Chunks that were never
// generated read as empty space.
func March(store *chunk.Store, origin, dir mgl32.Vec3, tMax float32) Hit {
	safe := mgl32.Vec3{
		clampComponent(dir.X()),
		clampComponent(dir.Y()),
		clampComponent(dir.Z()),
	}
	invDir := mgl32.Vec3{1 / safe.X(), 1 / safe.Y(), 1 / safe.Z()}

	var t float32
	for i := 0; t < tMax && i < maxIterations; i++ {
		// Bias past the boundary we stopped on. Large t needs more slack
		// because float32 cells get coarser far from the origin.
		bias := float32(0.001)
		if t > 100 {
			bias = 0.005
		}
		p := origin.Add(dir.Mul(t + bias))

		wx := int(math.Floor(float64(p.X())))
		wy := int(math.Floor(float64(p.Y())))
		wz := int(math.Floor(float64(p.Z())))
		cc, lx, ly, lz := chunk.SplitBlock(wx, wy, wz)

		if !store.Contains(cc) {
			t += stepToNext(p, dir, invDir, chunk.Size)
			continue
		}
		data, ok := store.ChunkData(cc)
		if !ok || data.Empty() {
			t += stepToNext(p, dir, invDir, chunk.Size)
			continue
		}

		b := data.BlockAt(lx, ly, lz)
		if b == chunk.Air {
			t += stepToNext(p, dir, invDir, 1)
			continue
		}

		return Hit{
			Hit:      true,
			T:        t,
			Block:    [3]int{wx, wy, wz},
			Material: b,
			Normal:   faceNormal(origin.Add(dir.Mul(t)), wx, wy, wz),
		}
	}
	return Hit{T: t}
}

func clampComponent(v float32) float32 {
	if math.Abs(float64(v)) >= minDirComponent {
		return v
	}
	if v >= 0 {
		return minDirComponent
	}
	return -minDirComponent
}

// stepToNext returns the distance to the nearest grid boundary of the
// given cell size ahead of p, plus a little extra so the next sample
// lands on the far side.
func stepToNext(p, dir, invDir mgl32.Vec3, size float32) float32 {
	res := float32(math.MaxFloat32)
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			continue
		}
		var dist float32
		if dir[i] > 0 {
			dist = (float32(math.Floor(float64(p[i]/size+1e-6)))+1)*size - p[i]
		} else {
			dist = float32(math.Floor(float64(p[i]/size-1e-6)))*size - p[i]
		}
		if tv := dist * invDir[i]; tv > 1e-6 && tv < res {
			res = tv
		}
	}
	if res == math.MaxFloat32 {
		return 0.001
	}
	if res < 0.001 {
		res = 0.001
	}
	return res + 1e-4
}

// faceNormal picks the axis the hit point is closest to leaving the cell
// on. The hit point sits on or just inside a face, so the dominant center
// offset is the entered face.
func faceNormal(hit mgl32.Vec3, wx, wy, wz int) mgl32.Vec3 {
	center := mgl32.Vec3{float32(wx) + 0.5, float32(wy) + 0.5, float32(wz) + 0.5}
	off := hit.Sub(center)
	abs := mgl32.Vec3{
		float32(math.Abs(float64(off.X()))),
		float32(math.Abs(float64(off.Y()))),
		float32(math.Abs(float64(off.Z()))),
	}
	maxC := abs.X()
	if abs.Y() > maxC {
		maxC = abs.Y()
	}
	if abs.Z() > maxC {
		maxC = abs.Z()
	}

	var n mgl32.Vec3
	switch {
	case abs.X() >= maxC-0.01:
		n[0] = sign(off.X())
	case abs.Y() >= maxC-0.01:
		n[1] = sign(off.Y())
	default:
		n[2] = sign(off.Z())
	}
	return n
}

func sign(v float32) float32 {
	if v > 0 {
		return 1
	}
	return -1
}

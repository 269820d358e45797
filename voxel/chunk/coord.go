package chunk

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Size is the edge length of a chunk in blocks.
const Size = 16

// Coord addresses a chunk on the world grid. World block position of the
// chunk's minimum corner is Coord * Size per axis.
type Coord struct {
	X, Y, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Origin returns the world position of the chunk's minimum corner.
func (c Coord) Origin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X * Size),
		float32(c.Y * Size),
		float32(c.Z * Size),
	}
}

// Center returns the world position of the chunk's midpoint.
func (c Coord) Center() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X*Size) + Size/2,
		float32(c.Y*Size) + Size/2,
		float32(c.Z*Size) + Size/2,
	}
}

// Offset returns the coordinate shifted by the given chunk deltas.
func (c Coord) Offset(dx, dy, dz int) Coord {
	return Coord{c.X + dx, c.Y + dy, c.Z + dz}
}

// Chebyshev returns the chessboard distance to another chunk coordinate:
// the number of chunk steps when diagonal moves count as one.
func (c Coord) Chebyshev(o Coord) int {
	d := absInt(c.X - o.X)
	if dy := absInt(c.Y - o.Y); dy > d {
		d = dy
	}
	if dz := absInt(c.Z - o.Z); dz > d {
		d = dz
	}
	return d
}

// CoordAt returns the chunk containing a world position. Floor division
// keeps negative positions on the correct side of zero.
func CoordAt(pos mgl32.Vec3) Coord {
	return Coord{
		X: int(math.Floor(float64(pos.X()) / Size)),
		Y: int(math.Floor(float64(pos.Y()) / Size)),
		Z: int(math.Floor(float64(pos.Z()) / Size)),
	}
}

// SplitBlock maps a world block coordinate onto its chunk and the local
// cell inside it. Locals are always in [0, Size), negative world
// coordinates included.
func SplitBlock(x, y, z int) (Coord, int, int, int) {
	c := Coord{floorDiv(x), floorDiv(y), floorDiv(z)}
	return c, x - c.X*Size, y - c.Y*Size, z - c.Z*Size
}

func floorDiv(v int) int {
	if v < 0 {
		return (v - Size + 1) / Size
	}
	return v / Size
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

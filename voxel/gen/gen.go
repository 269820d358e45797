// Package gen fills chunks with terrain from a height field.
package gen

import (
	"github.com/strata3d/strata/voxel/chunk"
)

// SeaLevel is the world height at or below which chunks flood their open
// columns with water.
const SeaLevel = 16

// Material bands, in world block heights and slope (blocks of height per
// block of distance).
const (
	snowHeight  = 90
	stoneHeight = 70
	grassHeight = 36

	snowMaxSlope  = 2.0
	stoneMinSlope = 2.0
	cliffMinSlope = 3.5
)

// HeightField is the terrain source the generator samples. noise.Field
// implements it; tests substitute fixed fields.
type HeightField interface {
	Height(x, z int) int
	Gradient(x, z int) float64
}

// Generator fills chunks from a height field. It is pure: the same field
// and coordinate always produce the same chunk, so generation runs on any
// number of workers without coordination.
type Generator struct {
	field HeightField
}

func New(field HeightField) *Generator {
	return &Generator{field: field}
}

// Chunk generates the full block contents for one chunk coordinate.
//
// Every cell at or below the column's terrain height gets a material from
// the height band; in chunks whose vertical origin sits at or below sea
// level, the cells above the terrain fill with water up to the chunk top.
// Cells above terrain in higher chunks stay absent.
func (g *Generator) Chunk(c chunk.Coord) *chunk.Data {
	d := chunk.NewData()
	originY := c.Y * chunk.Size
	flooded := originY <= SeaLevel

	for lx := 0; lx < chunk.Size; lx++ {
		for lz := 0; lz < chunk.Size; lz++ {
			wx := c.X*chunk.Size + lx
			wz := c.Z*chunk.Size + lz
			h := g.field.Height(wx, wz)
			slope := g.field.Gradient(wx, wz)

			for ly := 0; ly < chunk.Size; ly++ {
				wy := originY + ly
				switch {
				case wy <= h:
					d.SetBlock(lx, ly, lz, classify(wy, slope))
				case flooded:
					d.SetBlock(lx, ly, lz, chunk.Water)
				}
			}
		}
	}

	d.MarkClean()
	return d
}

// classify picks the material for a world height and local slope. Order
// matters: snow caps beat stone bluffs beat grass.
func classify(wy int, slope float64) chunk.Block {
	switch {
	case wy >= snowHeight && slope <= snowMaxSlope:
		return chunk.Snow
	case (wy >= stoneHeight && slope >= stoneMinSlope) ||
		(wy >= grassHeight && slope >= cliffMinSlope):
		return chunk.Stone
	case wy >= grassHeight:
		return chunk.Grass
	default:
		return chunk.Sand
	}
}

package gen

import (
	"testing"

	"github.com/strata3d/strata/voxel/chunk"
)

// flatField is a fixed-height, fixed-slope terrain for exercising the
// material bands one at a time.
type flatField struct {
	height int
	slope  float64
}

func (f flatField) Height(x, z int) int      { return f.height }
func (f flatField) Gradient(x, z int) float64 { return f.slope }

func TestGeneratorMaterialBands(t *testing.T) {
	cases := []struct {
		name   string
		field  flatField
		coord  chunk.Coord
		cell   [3]int
		want   chunk.Block
	}{
		// Chunk y=5 spans world heights 80..95.
		{"snow cap", flatField{height: 100, slope: 0}, chunk.Coord{Y: 5}, [3]int{0, 10, 0}, chunk.Snow},
		{"grass below snow line", flatField{height: 100, slope: 0}, chunk.Coord{Y: 5}, [3]int{0, 9, 0}, chunk.Grass},
		{"steep high ground is stone", flatField{height: 100, slope: 3.0}, chunk.Coord{Y: 5}, [3]int{0, 0, 0}, chunk.Stone},
		{"steep slope denies snow", flatField{height: 100, slope: 3.0}, chunk.Coord{Y: 5}, [3]int{0, 12, 0}, chunk.Stone},
		// Chunk y=3 spans 48..63: below the stone band unless the cliff rule bites.
		{"cliff rule", flatField{height: 100, slope: 3.6}, chunk.Coord{Y: 3}, [3]int{4, 4, 4}, chunk.Stone},
		{"mid heights are grass", flatField{height: 100, slope: 1.0}, chunk.Coord{Y: 3}, [3]int{4, 4, 4}, chunk.Grass},
		// Chunk y=0 spans 0..15: always below the grass line.
		{"low ground is sand", flatField{height: 30, slope: 0}, chunk.Coord{Y: 0}, [3]int{7, 7, 7}, chunk.Sand},
	}

	for _, c := range cases {
		g := New(c.field)
		d := g.Chunk(c.coord)
		if got := d.BlockAt(c.cell[0], c.cell[1], c.cell[2]); got != c.want {
			t.Errorf("%s: expected %v at %v, got %v", c.name, c.want, c.cell, got)
		}
	}
}

func TestGeneratorWaterFillsLowChunks(t *testing.T) {
	g := New(flatField{height: 5, slope: 0})

	// Origin 0 <= sea level: sand up to the terrain, water above it.
	d := g.Chunk(chunk.Coord{})
	if got := d.BlockAt(3, 5, 3); got != chunk.Sand {
		t.Errorf("Expected Sand at terrain height, got %v", got)
	}
	if got := d.BlockAt(3, 6, 3); got != chunk.Water {
		t.Errorf("Expected Water just above terrain, got %v", got)
	}
	if got := d.BlockAt(3, 15, 3); got != chunk.Water {
		t.Errorf("Expected Water at the chunk top, got %v", got)
	}

	// Origin 16 is still at sea level: the whole open column floods.
	d = g.Chunk(chunk.Coord{Y: 1})
	if got := d.BlockAt(0, 0, 0); got != chunk.Water {
		t.Errorf("Expected Water in origin-16 chunk, got %v", got)
	}

	// Origin 32 is above sea level: nothing above terrain, chunk is air.
	d = g.Chunk(chunk.Coord{Y: 2})
	if !d.Empty() {
		t.Errorf("Expected empty chunk above sea level and terrain, got %d cells", d.Len())
	}
}

func TestGeneratorZeroHeightTerrain(t *testing.T) {
	g := New(flatField{height: 0, slope: 0})

	d := g.Chunk(chunk.Coord{})
	if got := d.BlockAt(0, 0, 0); got != chunk.Sand {
		t.Errorf("Expected Sand at world floor, got %v", got)
	}
	if got := d.BlockAt(0, 1, 0); got != chunk.Water {
		t.Errorf("Expected Water above a zero-height column, got %v", got)
	}
}

func TestGeneratorBelowTerrainIsSolid(t *testing.T) {
	// A negative chunk sits entirely under a height-40 terrain.
	g := New(flatField{height: 40, slope: 0})

	d := g.Chunk(chunk.Coord{Y: -1})
	for ly := 0; ly < chunk.Size; ly++ {
		if got := d.BlockAt(8, ly, 8); got != chunk.Sand {
			t.Errorf("Expected solid Sand underground at ly=%d, got %v", ly, got)
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	g := New(flatField{height: 50, slope: 1.2})
	c := chunk.Coord{X: 2, Y: 1, Z: -3}

	a := g.Chunk(c)
	b := g.Chunk(c)

	for y := 0; y < chunk.Size; y++ {
		for z := 0; z < chunk.Size; z++ {
			for x := 0; x < chunk.Size; x++ {
				if a.BlockAt(x, y, z) != b.BlockAt(x, y, z) {
					t.Fatalf("Generation not deterministic at (%d,%d,%d)", x, y, z)
				}
			}
		}
	}
}

func TestGeneratorPublishesClean(t *testing.T) {
	g := New(flatField{height: 20, slope: 0})
	if d := g.Chunk(chunk.Coord{}); d.Dirty() {
		t.Errorf("Generated chunk should arrive clean")
	}
}

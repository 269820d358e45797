// Package noise turns a world seed into terrain column heights.
package noise

import (
	"math"
	"sync"

	"github.com/ojrac/opensimplex-go"
)

// Fractal shape of the terrain: a broad base band carries the landmass and
// a tighter detail band roughens it up.
const (
	baseScale     = 128.0
	baseOctaves   = 4
	detailScale   = 32.0
	detailOctaves = 2
	detailWeight  = 0.3

	lacunarity  = 2.0
	persistence = 0.5
)

// Field samples terrain height per world column (x, z). Samples are
// memoized and a memoized column never changes, so every consumer sees the
// same terrain for the lifetime of the field. Safe for concurrent use;
// generation workers all read the same field.
type Field struct {
	noise       opensimplex.Noise
	worldHeight int

	mu    sync.RWMutex
	cache map[[2]int]float64 // raw column sample in [0,1]
}

func NewField(seed int64, worldHeight int) *Field {
	if worldHeight <= 0 {
		worldHeight = 256
	}
	return &Field{
		noise:       opensimplex.NewNormalized(seed),
		worldHeight: worldHeight,
		cache:       make(map[[2]int]float64),
	}
}

func (f *Field) WorldHeight() int { return f.worldHeight }

// Height returns the terrain surface height for a world column, in blocks,
// within [0, worldHeight).
func (f *Field) Height(x, z int) int {
	h := int(f.sample(x, z) * float64(f.worldHeight))
	if h >= f.worldHeight {
		h = f.worldHeight - 1
	}
	return h
}

// Gradient returns the horizontal steepness at a column, in blocks of height
// per block of distance, from central differences over the four neighboring
// columns (+-1 in x, +-1 in z).
func (f *Field) Gradient(x, z int) float64 {
	scale := float64(f.worldHeight)
	dx := (f.sample(x+1, z) - f.sample(x-1, z)) * scale / 2
	dz := (f.sample(x, z+1) - f.sample(x, z-1)) * scale / 2
	return math.Hypot(dx, dz)
}

// sample returns the memoized fractal value for a column, in [0,1].
func (f *Field) sample(x, z int) float64 {
	key := [2]int{x, z}
	f.mu.RLock()
	v, ok := f.cache[key]
	f.mu.RUnlock()
	if ok {
		return v
	}

	v = f.fractal(float64(x), float64(z))

	// A racing fill computes the identical value, so last write wins.
	f.mu.Lock()
	f.cache[key] = v
	f.mu.Unlock()
	return v
}

func (f *Field) fractal(x, z float64) float64 {
	base := f.octaveSum(x/baseScale, z/baseScale, baseOctaves)
	detail := f.octaveSum(x/detailScale, z/detailScale, detailOctaves)
	return base*(1-detailWeight) + detail*detailWeight
}

func (f *Field) octaveSum(x, z float64, octaves int) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for o := 0; o < octaves; o++ {
		sum += f.noise.Eval2(x*freq, z*freq) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	return sum / norm
}

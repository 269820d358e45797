package chunk

import "fmt"

// Block identifies the material stored in one voxel cell. Air is the zero
// value; a cell that stores nothing reads as Air.
type Block uint8

const (
	Air Block = iota
	Stone
	Grass
	Sand
	Water
	Snow
)

// BlockCount is the number of distinct materials, Air included. The texture
// atlas reserves one column per non-Air material.
const BlockCount = 6

func (b Block) String() string {
	switch b {
	case Air:
		return "Air"
	case Stone:
		return "Stone"
	case Grass:
		return "Grass"
	case Sand:
		return "Sand"
	case Water:
		return "Water"
	case Snow:
		return "Snow"
	}
	return fmt.Sprintf("Block(%d)", uint8(b))
}

package chunk

import "fmt"

type local struct {
	x, y, z int8
}

// Data holds the block contents of one chunk. Storage is sparse: only
// non-Air cells occupy an entry, so an untouched or all-air chunk costs
// almost nothing to keep around.
//
// Once a Data has been published to the store it is treated as immutable;
// meshing workers read it from other goroutines on that assumption.
type Data struct {
	blocks map[local]Block
	dirty  bool
}

func NewData() *Data {
	return &Data{blocks: make(map[local]Block)}
}

// BlockAt returns the block at a local cell. Absent cells read as Air.
// Coordinates outside [0, Size) are a programming error.
func (d *Data) BlockAt(x, y, z int) Block {
	checkBounds(x, y, z)
	return d.blocks[local{int8(x), int8(y), int8(z)}]
}

// SetBlock stores a block at a local cell and marks the chunk dirty.
// Writing Air removes the entry, keeping the map sparse.
func (d *Data) SetBlock(x, y, z int, b Block) {
	checkBounds(x, y, z)
	k := local{int8(x), int8(y), int8(z)}
	if b == Air {
		delete(d.blocks, k)
	} else {
		d.blocks[k] = b
	}
	d.dirty = true
}

// Empty reports whether the chunk stores no blocks at all.
func (d *Data) Empty() bool { return len(d.blocks) == 0 }

// Len returns the number of stored (non-Air) cells.
func (d *Data) Len() int { return len(d.blocks) }

// Dirty reports whether the chunk changed since the last MarkClean.
func (d *Data) Dirty() bool { return d.dirty }

func (d *Data) MarkClean() { d.dirty = false }

func checkBounds(x, y, z int) {
	if x < 0 || x >= Size || y < 0 || y >= Size || z < 0 || z >= Size {
		panic(fmt.Sprintf("chunk: local cell (%d,%d,%d) outside [0,%d)", x, y, z, Size))
	}
}

// Package vox reads MagicaVoxel .vox files and converts their models into
// block placements on the engine grid.
//
// MagicaVoxel is Z-up; the engine is Y-up. Conversion maps X to X, the
// file's Z to engine Y and the file's Y to engine Z.
package vox

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/strata3d/strata/voxel/chunk"
)

const magic = "VOX "

// Voxel is one filled cell of a model, in file orientation. Color indexes
// the palette; index 0 never appears in a model.
type Voxel struct {
	X, Y, Z, Color byte
}

// Model is one voxel grid from the file.
type Model struct {
	SizeX, SizeY, SizeZ uint32
	Voxels              []Voxel
}

// Palette holds the 256 RGBA colors. Entry 0 is unused by voxels.
type Palette [256][4]byte

type File struct {
	Version int32
	Models  []Model
	Palette Palette
}

// LoadFile reads a .vox file from disk.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vox: open %s: %w", path, err)
	}
	defer f.Close()
	out, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("vox: decode %s: %w", path, err)
	}
	return out, nil
}

// Decode parses a .vox stream. Unknown chunk types are skipped, so files
// written by newer MagicaVoxel versions still load their models and
// palette.
func Decode(r io.Reader) (*File, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("vox: read header: %w", err)
	}
	if string(header[:]) != magic {
		return nil, fmt.Errorf("vox: bad magic %q", header[:])
	}

	version, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("vox: read version: %w", err)
	}

	f := &File{Version: version, Palette: defaultPalette()}

	for {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("vox: read chunk id: %w", err)
		}

		size, err := readInt32(r)
		if err != nil {
			return nil, fmt.Errorf("vox: chunk %q: %w", id[:], err)
		}
		if _, err := readInt32(r); err != nil { // children size, unused
			return nil, fmt.Errorf("vox: chunk %q: %w", id[:], err)
		}
		if size < 0 {
			return nil, fmt.Errorf("vox: chunk %q has negative size %d", id[:], size)
		}

		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("vox: chunk %q body: %w", id[:], err)
		}

		switch string(id[:]) {
		case "MAIN":
			// Container; its children follow as ordinary chunks.
		case "SIZE":
			if len(body) < 12 {
				return nil, fmt.Errorf("vox: SIZE chunk too small: %d bytes", len(body))
			}
			f.Models = append(f.Models, Model{
				SizeX: binary.LittleEndian.Uint32(body[0:4]),
				SizeY: binary.LittleEndian.Uint32(body[4:8]),
				SizeZ: binary.LittleEndian.Uint32(body[8:12]),
			})
		case "XYZI":
			if len(f.Models) == 0 {
				return nil, fmt.Errorf("vox: XYZI chunk before any SIZE chunk")
			}
			if len(body) < 4 {
				return nil, fmt.Errorf("vox: XYZI chunk too small: %d bytes", len(body))
			}
			n := int(binary.LittleEndian.Uint32(body[:4]))
			if 4+n*4 > len(body) {
				return nil, fmt.Errorf("vox: XYZI declares %d voxels, body holds %d bytes", n, len(body))
			}
			m := &f.Models[len(f.Models)-1]
			m.Voxels = make([]Voxel, n)
			for i := 0; i < n; i++ {
				off := 4 + i*4
				m.Voxels[i] = Voxel{
					X:     body[off],
					Y:     body[off+1],
					Z:     body[off+2],
					Color: body[off+3],
				}
			}
		case "RGBA":
			// Color i of the chunk is palette index i+1.
			for i := 0; i < 255; i++ {
				off := i * 4
				if off+3 >= len(body) {
					break
				}
				copy(f.Palette[i+1][:], body[off:off+4])
			}
		}
	}

	return f, nil
}

func readInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b[:])), nil
}

func defaultPalette() Palette {
	var p Palette
	for i := range p {
		p[i] = [4]byte{255, 255, 255, 255}
	}
	return p
}

// Placement is one block of a model in engine orientation, relative to
// the model's minimum corner.
type Placement struct {
	X, Y, Z int
	Block   chunk.Block
}

// Mapper turns a palette entry into a block material. Returning Air drops
// the voxel.
type Mapper func(color byte, rgba [4]byte) chunk.Block

// ModelBlocks converts one model into engine-oriented block placements.
// A nil mapper classifies palette colors with MaterialFor.
func (f *File) ModelBlocks(index int, m Mapper) []Placement {
	if index < 0 || index >= len(f.Models) {
		panic(fmt.Sprintf("vox: model index %d out of range [0,%d)", index, len(f.Models)))
	}
	if m == nil {
		m = func(color byte, rgba [4]byte) chunk.Block { return MaterialFor(rgba) }
	}

	model := &f.Models[index]
	out := make([]Placement, 0, len(model.Voxels))
	for _, v := range model.Voxels {
		b := m(v.Color, f.Palette[v.Color])
		if b == chunk.Air {
			continue
		}
		out = append(out, Placement{
			X:     int(v.X),
			Y:     int(v.Z),
			Z:     int(v.Y),
			Block: b,
		})
	}
	return out
}

// MaterialFor classifies a palette color into the nearest block material.
// Transparent entries map to Air.
func MaterialFor(rgba [4]byte) chunk.Block {
	r, g, b, a := rgba[0], rgba[1], rgba[2], rgba[3]
	switch {
	case a == 0:
		return chunk.Air
	case r >= 200 && g >= 200 && b >= 200:
		return chunk.Snow
	case b > r && b > g:
		return chunk.Water
	case r >= 180 && g >= 140 && b < 120:
		return chunk.Sand
	case g > r && g > b:
		return chunk.Grass
	default:
		return chunk.Stone
	}
}

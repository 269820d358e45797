package vox

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/strata3d/strata/voxel/chunk"
)

func writeChunk(buf *bytes.Buffer, id string, body []byte) {
	buf.WriteString(id)
	binary.Write(buf, binary.LittleEndian, int32(len(body)))
	binary.Write(buf, binary.LittleEndian, int32(0))
	buf.Write(body)
}

// testFile builds a minimal one-model file: two voxels, color 1 green and
// color 2 fully transparent.
func testFile(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	buf.WriteString("VOX ")
	binary.Write(buf, binary.LittleEndian, int32(150))

	writeChunk(buf, "MAIN", nil)

	size := make([]byte, 12)
	binary.LittleEndian.PutUint32(size[0:4], 3)
	binary.LittleEndian.PutUint32(size[4:8], 4)
	binary.LittleEndian.PutUint32(size[8:12], 5)
	writeChunk(buf, "SIZE", size)

	xyzi := make([]byte, 4+2*4)
	binary.LittleEndian.PutUint32(xyzi[0:4], 2)
	copy(xyzi[4:8], []byte{1, 2, 3, 1})
	copy(xyzi[8:12], []byte{0, 0, 0, 2})
	writeChunk(buf, "XYZI", xyzi)

	rgba := make([]byte, 1024)
	copy(rgba[0:4], []byte{40, 200, 60, 255}) // palette index 1
	copy(rgba[4:8], []byte{0, 0, 0, 0})       // palette index 2
	writeChunk(buf, "RGBA", rgba)

	return buf.Bytes()
}

func TestDecodeModel(t *testing.T) {
	f, err := Decode(bytes.NewReader(testFile(t)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if f.Version != 150 {
		t.Errorf("Expected version 150, got %d", f.Version)
	}
	if len(f.Models) != 1 {
		t.Fatalf("Expected 1 model, got %d", len(f.Models))
	}
	m := f.Models[0]
	if m.SizeX != 3 || m.SizeY != 4 || m.SizeZ != 5 {
		t.Errorf("Expected size 3x4x5, got %dx%dx%d", m.SizeX, m.SizeY, m.SizeZ)
	}
	if len(m.Voxels) != 2 {
		t.Fatalf("Expected 2 voxels, got %d", len(m.Voxels))
	}
	if m.Voxels[0] != (Voxel{1, 2, 3, 1}) {
		t.Errorf("Expected voxel {1 2 3 1}, got %v", m.Voxels[0])
	}
	if f.Palette[1] != [4]byte{40, 200, 60, 255} {
		t.Errorf("Expected palette[1] to be the green entry, got %v", f.Palette[1])
	}
}

func TestDecodeBadMagic(t *testing.T) {
	data := testFile(t)
	copy(data[:4], "NOPE")
	if _, err := Decode(bytes.NewReader(data)); err == nil {
		t.Error("Expected an error for a bad magic number")
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := testFile(t)
	if _, err := Decode(bytes.NewReader(data[:len(data)-100])); err == nil {
		t.Error("Expected an error for a truncated stream")
	}
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.WriteString("VOX ")
	binary.Write(buf, binary.LittleEndian, int32(200))
	writeChunk(buf, "MAIN", nil)
	writeChunk(buf, "nTRN", []byte{1, 2, 3, 4, 5, 6, 7})

	size := make([]byte, 12)
	binary.LittleEndian.PutUint32(size[0:4], 1)
	binary.LittleEndian.PutUint32(size[4:8], 1)
	binary.LittleEndian.PutUint32(size[8:12], 1)
	writeChunk(buf, "SIZE", size)

	f, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed on unknown chunk: %v", err)
	}
	if len(f.Models) != 1 {
		t.Errorf("Expected 1 model, got %d", len(f.Models))
	}
}

func TestDecodeVoxelsBeforeSize(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.WriteString("VOX ")
	binary.Write(buf, binary.LittleEndian, int32(150))
	writeChunk(buf, "MAIN", nil)
	xyzi := make([]byte, 8)
	binary.LittleEndian.PutUint32(xyzi[0:4], 1)
	writeChunk(buf, "XYZI", xyzi)

	if _, err := Decode(buf); err == nil {
		t.Error("Expected an error for XYZI without SIZE")
	}
}

func TestModelBlocksAxisSwap(t *testing.T) {
	f, err := Decode(bytes.NewReader(testFile(t)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	blocks := f.ModelBlocks(0, nil)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 placement after dropping the transparent voxel, got %d", len(blocks))
	}
	// File (1,2,3) lands at engine (1,3,2): Y-up takes the file's Z.
	want := Placement{X: 1, Y: 3, Z: 2, Block: chunk.Grass}
	if blocks[0] != want {
		t.Errorf("Expected %v, got %v", want, blocks[0])
	}
}

func TestModelBlocksCustomMapper(t *testing.T) {
	f, err := Decode(bytes.NewReader(testFile(t)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	all := func(color byte, rgba [4]byte) chunk.Block { return chunk.Stone }
	blocks := f.ModelBlocks(0, all)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 placements with a keep-all mapper, got %d", len(blocks))
	}
	for _, p := range blocks {
		if p.Block != chunk.Stone {
			t.Errorf("Expected Stone, got %v", p.Block)
		}
	}
}

func TestModelBlocksIndexPanics(t *testing.T) {
	f := &File{}
	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for an out-of-range model index")
		}
	}()
	f.ModelBlocks(0, nil)
}

func TestMaterialFor(t *testing.T) {
	cases := []struct {
		rgba [4]byte
		want chunk.Block
	}{
		{[4]byte{250, 250, 250, 255}, chunk.Snow},
		{[4]byte{30, 60, 220, 255}, chunk.Water},
		{[4]byte{230, 200, 110, 255}, chunk.Sand},
		{[4]byte{40, 200, 60, 255}, chunk.Grass},
		{[4]byte{128, 128, 128, 255}, chunk.Stone},
		{[4]byte{255, 0, 0, 0}, chunk.Air},
	}
	for _, c := range cases {
		if got := MaterialFor(c.rgba); got != c.want {
			t.Errorf("Expected %v for %v, got %v", c.want, c.rgba, got)
		}
	}
}

// Package mesh builds renderable geometry for chunks.
//
// Meshing is cheap to redo and runs on worker goroutines against published
// (immutable) chunk data, so a mesh is a pure function of a chunk and its
// six neighbors.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strata3d/strata/voxel/chunk"
)

// Direction indexes the six axis neighbors of a cell or chunk, in the
// fixed order -z, +z, -x, +x, +y, -y.
type Direction int

const (
	NegZ Direction = iota
	PosZ
	NegX
	PosX
	PosY
	NegY
	DirectionCount
)

// DirOffsets holds the unit step for each direction, in cells or chunks.
var DirOffsets = [DirectionCount][3]int{
	{0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0},
}

// Neighborhood carries the six chunks adjacent to the one being meshed,
// indexed by Direction. A nil entry reads as all air.
type Neighborhood [DirectionCount]*chunk.Data

// Mesh is flat vertex data in chunk-local coordinates, ready for upload.
// Four vertices and six indices per face, two triangles in the pattern
// (0,1,2) (2,1,3) off each face's base vertex.
type Mesh struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	UVs       []float32 // uv per vertex
	Indices   []uint32
}

func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }
func (m *Mesh) FaceCount() int   { return len(m.Indices) / 6 }
func (m *Mesh) Empty() bool      { return len(m.Indices) == 0 }

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// LocalAABB returns the chunk-local bounding box, zero to the chunk edge
// per axis. It travels with a mesh upload next to the chunk's world
// translation; the consumer composes the two to place its culling volume.
func LocalAABB() AABB {
	return AABB{Max: mgl32.Vec3{chunk.Size, chunk.Size, chunk.Size}}
}

// Each material owns one texture column, Air excluded, left to right in
// ordinal order.
const uvStep = 1.0 / float32(chunk.BlockCount-1)

// Face quads per direction: the quad's minimum corner offset within the
// cell plus the two edge axes, with u x v pointing along the face normal.
var faces = [DirectionCount]struct {
	origin [3]float32
	u, v   [3]float32
	normal [3]float32
}{
	NegZ: {origin: [3]float32{1, 0, 0}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}, normal: [3]float32{0, 0, -1}},
	PosZ: {origin: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}, normal: [3]float32{0, 0, 1}},
	NegX: {origin: [3]float32{0, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}, normal: [3]float32{-1, 0, 0}},
	PosX: {origin: [3]float32{1, 0, 1}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}, normal: [3]float32{1, 0, 0}},
	PosY: {origin: [3]float32{0, 1, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}, normal: [3]float32{0, 1, 0}},
	NegY: {origin: [3]float32{0, 0, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}, normal: [3]float32{0, -1, 0}},
}

// Build meshes one chunk against its six neighbors. Air cells emit nothing.
// Every other cell emits one quad per face exposed to air or, for non-water
// blocks, to water, so lakes render their surface without interior walls.
// Steps across the chunk border resolve through the neighborhood; a missing
// neighbor counts as air.
func Build(data *chunk.Data, nb Neighborhood) *Mesh {
	m := &Mesh{}
	if data == nil {
		return m
	}
	for ly := 0; ly < chunk.Size; ly++ {
		for lz := 0; lz < chunk.Size; lz++ {
			for lx := 0; lx < chunk.Size; lx++ {
				b := data.BlockAt(lx, ly, lz)
				if b == chunk.Air {
					continue
				}
				for d := NegZ; d < DirectionCount; d++ {
					adj := neighborBlock(data, nb, d, lx, ly, lz)
					if adj == chunk.Air || (adj == chunk.Water && b != chunk.Water) {
						m.addFace(d, lx, ly, lz, b)
					}
				}
			}
		}
	}
	return m
}

// neighborBlock reads the cell one step along d, crossing into the
// adjacent chunk when the step leaves this one.
func neighborBlock(data *chunk.Data, nb Neighborhood, d Direction, x, y, z int) chunk.Block {
	off := DirOffsets[d]
	nx, ny, nz := x+off[0], y+off[1], z+off[2]
	if nx >= 0 && nx < chunk.Size &&
		ny >= 0 && ny < chunk.Size &&
		nz >= 0 && nz < chunk.Size {
		return data.BlockAt(nx, ny, nz)
	}
	n := nb[d]
	if n == nil {
		return chunk.Air
	}
	return n.BlockAt(wrapLocal(nx), wrapLocal(ny), wrapLocal(nz))
}

func wrapLocal(v int) int {
	return (v + chunk.Size) % chunk.Size
}

func (m *Mesh) addFace(d Direction, x, y, z int, b chunk.Block) {
	f := &faces[d]
	base := uint32(m.VertexCount())

	ox := float32(x) + f.origin[0]
	oy := float32(y) + f.origin[1]
	oz := float32(z) + f.origin[2]

	// Corners: origin, origin+u, origin+v, origin+u+v.
	m.Positions = append(m.Positions,
		ox, oy, oz,
		ox+f.u[0], oy+f.u[1], oz+f.u[2],
		ox+f.v[0], oy+f.v[1], oz+f.v[2],
		ox+f.u[0]+f.v[0], oy+f.u[1]+f.v[1], oz+f.u[2]+f.v[2],
	)
	for i := 0; i < 4; i++ {
		m.Normals = append(m.Normals, f.normal[0], f.normal[1], f.normal[2])
	}

	u0 := float32(b-1) * uvStep
	u1 := u0 + uvStep
	m.UVs = append(m.UVs,
		u0, 1,
		u1, 1,
		u0, 0,
		u1, 0,
	)

	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base+2, base+1, base+3,
	)
}

package chunk

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strata3d/strata/voxel/octree"
)

// Store maps chunk coordinates onto a sparse octree of chunk payloads.
//
// The tree is sized so its deepest octants coincide exactly with chunks:
// the root edge is Size<<depth centered on the world origin, which puts
// every deepest-node center precisely on a chunk center. After the first
// descent a coordinate's node id is cached, so repeat lookups skip the
// tree walk entirely.
//
// The store belongs to the driving goroutine. Worker tasks get payload
// references resolved for them up front and never touch the store itself;
// only the payload slots inside the octree are lock-guarded.
type Store struct {
	tree  *octree.Tree[Data]
	cache map[Coord]octree.NodeID
	span  int // addressable coords are [-span, span) per axis
}

// NewStore builds a store able to address chunk coordinates within at
// least [-extent, extent) on every axis. The actual span rounds up to the
// next power of two so the octree stays chunk-aligned.
func NewStore(extent int) *Store {
	if extent < 1 {
		extent = 1
	}
	depth := depthForExtent(extent)
	edge := Size << depth
	return &Store{
		tree:  octree.New[Data](mgl32.Vec3{}, float32(edge), depth),
		cache: make(map[Coord]octree.NodeID),
		span:  1 << (depth - 1),
	}
}

// depthForExtent returns the smallest tree depth whose deepest octants
// cover extent chunks out from the origin on every axis. Depth d covers
// 2^(d-1) chunks per direction.
func depthForExtent(extent int) int {
	d := 1
	for span := 1; span < extent; span *= 2 {
		d++
	}
	return d
}

// Extent returns the addressable chunk range per axis direction.
func (s *Store) Extent() int { return s.span }

// Contains reports whether a coordinate falls inside the addressable span.
func (s *Store) Contains(c Coord) bool {
	return c.X >= -s.span && c.X < s.span &&
		c.Y >= -s.span && c.Y < s.span &&
		c.Z >= -s.span && c.Z < s.span
}

// Node returns the octree node backing a chunk coordinate, descending and
// caching on the first visit. Outside the addressable span the descent
// would alias distinct coordinates onto one octant, so that is a
// programming error.
func (s *Store) Node(c Coord) *octree.Node[Data] {
	if id, ok := s.cache[c]; ok {
		return s.tree.Node(id)
	}
	if !s.Contains(c) {
		panic(fmt.Sprintf("chunk: coordinate %v outside world span [%d,%d)", c, -s.span, s.span))
	}
	n := s.tree.QueryOctant(c.Center())
	s.cache[c] = n.ID()
	return n
}

// ChunkData returns the published data for a chunk, if any.
func (s *Store) ChunkData(c Coord) (*Data, bool) {
	return s.Node(c).Payload()
}

// SetChunkData publishes chunk data. The data must not change afterwards.
func (s *Store) SetChunkData(c Coord, d *Data) {
	s.Node(c).SetPayload(d)
}

// ClearChunk drops a chunk's payload and cache entry. The octree node
// itself is retained; the arena never shrinks. Clearing a chunk that was
// never loaded does nothing.
func (s *Store) ClearChunk(c Coord) {
	id, ok := s.cache[c]
	if !ok {
		return
	}
	s.tree.Node(id).ClearPayload()
	delete(s.cache, c)
}

// KnownEmpty reports whether a chunk has been generated and came out with
// no blocks at all. Ungenerated chunks report false, and so do coordinates
// outside the addressable span.
func (s *Store) KnownEmpty(c Coord) bool {
	if !s.Contains(c) {
		return false
	}
	d, ok := s.ChunkData(c)
	return ok && d.Empty()
}

// Loaded returns how many chunk coordinates currently resolve through the
// cache.
func (s *Store) Loaded() int { return len(s.cache) }

// Tree exposes the underlying octree for inspection.
func (s *Store) Tree() *octree.Tree[Data] { return s.tree }

package strata

import (
	"github.com/strata3d/strata/voxel/chunk"
	"github.com/strata3d/strata/voxel/mesh"
	"github.com/strata3d/strata/voxel/task"
)

// chunkPhase walks a chunk from dispatch to a mesh at the sink. The order
// matters: anything at phaseGenerated or later has its data published in
// the store.
type chunkPhase int

const (
	phaseGenerating chunkPhase = iota
	phaseGenerated
	phaseMeshing
	phaseMeshed
)

type chunkEntry struct {
	phase   chunkPhase
	gen     *task.Future[*chunk.Data]
	meshJob *task.Future[*mesh.Mesh]
	handle  MeshHandle
	empty   bool
}

// inFlight reports whether a worker still owns part of this chunk. Entries
// in flight must never be evicted; the result would land on a chunk the
// loop no longer tracks.
func (e *chunkEntry) inFlight() bool {
	return e.phase == phaseGenerating || e.phase == phaseMeshing
}

// WorldState is the driving loop's book-keeping: one entry per live chunk
// plus in-flight counters. Only the driving goroutine touches it.
type WorldState struct {
	entries      map[chunk.Coord]*chunkEntry
	viewChunk    chunk.Coord
	genInFlight  int
	meshInFlight int

	generated uint64
	meshed    uint64

	log Logger
}

func newWorldState(log Logger) *WorldState {
	return &WorldState{
		entries: make(map[chunk.Coord]*chunkEntry),
		log:     log,
	}
}

// Live returns how many chunks currently have an entry.
func (st *WorldState) Live() int { return len(st.entries) }

// InFlight returns how many generation and meshing jobs are outstanding.
func (st *WorldState) InFlight() int { return st.genInFlight + st.meshInFlight }

// Generated returns the lifetime count of chunks that finished generation.
func (st *WorldState) Generated() uint64 { return st.generated }

// Meshed returns the lifetime count of chunks that finished meshing.
func (st *WorldState) Meshed() uint64 { return st.meshed }

// ViewChunk returns the chunk the viewpoint occupied this frame.
func (st *WorldState) ViewChunk() chunk.Coord { return st.viewChunk }

// neighborsGenerated reports whether all six face neighbors have published
// chunk data. Meshing across a missing neighbor would bake seams that only
// heal on re-mesh, so the loop waits instead.
func (st *WorldState) neighborsGenerated(c chunk.Coord) bool {
	for _, off := range mesh.DirOffsets {
		e, ok := st.entries[c.Offset(off[0], off[1], off[2])]
		if !ok || e.phase < phaseGenerated {
			return false
		}
	}
	return true
}

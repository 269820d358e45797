package strata

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strata3d/strata/voxel/chunk"
	"github.com/strata3d/strata/voxel/mesh"
	"github.com/strata3d/strata/voxel/vox"
)

// BlockEdit sets one world block to a material. Air carves.
type BlockEdit struct {
	X, Y, Z int
	Block   chunk.Block
}

// SphereEdit sets every block whose center lies within Radius of Center.
type SphereEdit struct {
	Center mgl32.Vec3
	Radius float32
	Block  chunk.Block
}

// EditQueue collects world edits for the driving loop to apply.
//
// Edits land on loaded chunks only: anything aimed at a chunk that is not
// streamed in is dropped, and an edit that would race an in-flight mesh
// waits in the queue for a later frame. Changed chunks go back through
// the meshing pipeline automatically.
type EditQueue struct {
	// BudgetPerFrame caps how many edits apply per frame, zero meaning
	// the default of 1024. A sphere counts as one edit regardless of its
	// volume.
	BudgetPerFrame int

	points  []BlockEdit
	spheres []SphereEdit
}

const defaultEditBudget = 1024

func (q *EditQueue) Place(x, y, z int, b chunk.Block) {
	q.points = append(q.points, BlockEdit{x, y, z, b})
}

// Carve removes one block.
func (q *EditQueue) Carve(x, y, z int) { q.Place(x, y, z, chunk.Air) }

func (q *EditQueue) FillSphere(center mgl32.Vec3, radius float32, b chunk.Block) {
	q.spheres = append(q.spheres, SphereEdit{center, radius, b})
}

func (q *EditQueue) CarveSphere(center mgl32.Vec3, radius float32) {
	q.FillSphere(center, radius, chunk.Air)
}

// PlaceModel queues every block of a model with its minimum corner at a
// world block position and returns how many blocks were queued.
func (q *EditQueue) PlaceModel(f *vox.File, index int, at [3]int, m vox.Mapper) int {
	placements := f.ModelBlocks(index, m)
	for _, p := range placements {
		q.Place(at[0]+p.X, at[1]+p.Y, at[2]+p.Z, p.Block)
	}
	return len(placements)
}

// Pending returns how many edits are still queued.
func (q *EditQueue) Pending() int { return len(q.points) + len(q.spheres) }

type editResult int

const (
	editApplied editResult = iota
	editDeferred
	editDropped
)

// editApplySystem drains the edit queue onto loaded chunks. Spheres drain
// before points; whatever the budget or a mesh in flight defers stays
// queued in order.
func editApplySystem(q *EditQueue, st *WorldState, store *chunk.Store, prof *Profiler) {
	prof.Begin(scopeEdit)
	defer prof.End(scopeEdit)

	budget := q.BudgetPerFrame
	if budget <= 0 {
		budget = defaultEditBudget
	}

	applied, dropped, count := 0, 0, 0

	var keptSpheres []SphereEdit
	for _, s := range q.spheres {
		if count >= budget {
			keptSpheres = append(keptSpheres, s)
			continue
		}
		count++
		switch applySphereEdit(st, store, s) {
		case editApplied:
			applied++
		case editDeferred:
			keptSpheres = append(keptSpheres, s)
		case editDropped:
			dropped++
		}
	}
	q.spheres = keptSpheres

	var keptPoints []BlockEdit
	for _, e := range q.points {
		if count >= budget {
			keptPoints = append(keptPoints, e)
			continue
		}
		count++
		switch applyBlockEdit(st, store, e) {
		case editApplied:
			applied++
		case editDeferred:
			keptPoints = append(keptPoints, e)
		case editDropped:
			dropped++
		}
	}
	q.points = keptPoints

	prof.Add("edits applied", applied)
	prof.Add("edits dropped", dropped)
	if dropped > 0 {
		st.log.Debugf("Dropped %d edits outside the loaded world", dropped)
	}
}

func applyBlockEdit(st *WorldState, store *chunk.Store, e BlockEdit) editResult {
	cc, lx, ly, lz := chunk.SplitBlock(e.X, e.Y, e.Z)
	ent, ok := st.entries[cc]
	if !ok {
		return editDropped
	}
	if !editableNow(st, cc, ent) {
		return editDeferred
	}
	data, ok := store.ChunkData(cc)
	if !ok {
		panic(fmt.Sprintf("chunk %v is past generation but has no data", cc))
	}
	if data.BlockAt(lx, ly, lz) == e.Block {
		return editApplied
	}

	data.SetBlock(lx, ly, lz, e.Block)
	ent.empty = data.Empty()
	ent.phase = phaseGenerated
	markBorderNeighbors(st, cc, lx, ly, lz)
	return editApplied
}

// applySphereEdit writes a whole sphere in one frame. Cells over chunks
// that are not loaded get clipped; if any loaded chunk under the sphere
// cannot be written yet, the whole sphere is deferred so it never applies
// half-done.
func applySphereEdit(st *WorldState, store *chunk.Store, s SphereEdit) editResult {
	if s.Radius <= 0 {
		return editApplied
	}

	minX := int(math.Floor(float64(s.Center.X() - s.Radius)))
	maxX := int(math.Floor(float64(s.Center.X() + s.Radius)))
	minY := int(math.Floor(float64(s.Center.Y() - s.Radius)))
	maxY := int(math.Floor(float64(s.Center.Y() + s.Radius)))
	minZ := int(math.Floor(float64(s.Center.Z() - s.Radius)))
	maxZ := int(math.Floor(float64(s.Center.Z() + s.Radius)))

	minC, _, _, _ := chunk.SplitBlock(minX, minY, minZ)
	maxC, _, _, _ := chunk.SplitBlock(maxX, maxY, maxZ)

	anyLive := false
	for cx := minC.X; cx <= maxC.X; cx++ {
		for cy := minC.Y; cy <= maxC.Y; cy++ {
			for cz := minC.Z; cz <= maxC.Z; cz++ {
				cc := chunk.Coord{X: cx, Y: cy, Z: cz}
				ent, ok := st.entries[cc]
				if !ok {
					continue
				}
				if !editableNow(st, cc, ent) {
					return editDeferred
				}
				anyLive = true
			}
		}
	}
	if !anyLive {
		return editDropped
	}

	r2 := s.Radius * s.Radius
	cache := make(map[chunk.Coord]*chunk.Data)
	changed := make(map[chunk.Coord]bool)
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				dx := float32(x) + 0.5 - s.Center.X()
				dy := float32(y) + 0.5 - s.Center.Y()
				dz := float32(z) + 0.5 - s.Center.Z()
				if dx*dx+dy*dy+dz*dz > r2 {
					continue
				}

				cc, lx, ly, lz := chunk.SplitBlock(x, y, z)
				if _, ok := st.entries[cc]; !ok {
					continue
				}
				data := cache[cc]
				if data == nil {
					d, ok := store.ChunkData(cc)
					if !ok {
						panic(fmt.Sprintf("chunk %v is past generation but has no data", cc))
					}
					data = d
					cache[cc] = d
				}
				if data.BlockAt(lx, ly, lz) == s.Block {
					continue
				}
				data.SetBlock(lx, ly, lz, s.Block)
				changed[cc] = true
				markBorderNeighbors(st, cc, lx, ly, lz)
			}
		}
	}

	for cc := range changed {
		ent := st.entries[cc]
		ent.empty = cache[cc].Empty()
		ent.phase = phaseGenerated
	}
	return editApplied
}

// editableNow reports whether a chunk's data can change this frame. Data
// being read by a mesh worker, for the chunk itself or as the neighborhood
// of an adjacent one, must not move under it.
func editableNow(st *WorldState, cc chunk.Coord, ent *chunkEntry) bool {
	if ent.phase != phaseGenerated && ent.phase != phaseMeshed {
		return false
	}
	for _, off := range mesh.DirOffsets {
		if n, ok := st.entries[cc.Offset(off[0], off[1], off[2])]; ok && n.phase == phaseMeshing {
			return false
		}
	}
	return true
}

// markBorderNeighbors re-queues meshing for neighbors sharing a face with
// an edited border cell; their meshes bake faces against this chunk's
// blocks. Empty neighbors have no mesh to refresh.
func markBorderNeighbors(st *WorldState, cc chunk.Coord, lx, ly, lz int) {
	mark := func(dx, dy, dz int) {
		if n, ok := st.entries[cc.Offset(dx, dy, dz)]; ok && n.phase == phaseMeshed && !n.empty {
			n.phase = phaseGenerated
		}
	}
	if lx == 0 {
		mark(-1, 0, 0)
	}
	if lx == chunk.Size-1 {
		mark(1, 0, 0)
	}
	if ly == 0 {
		mark(0, -1, 0)
	}
	if ly == chunk.Size-1 {
		mark(0, 1, 0)
	}
	if lz == 0 {
		mark(0, 0, -1)
	}
	if lz == chunk.Size-1 {
		mark(0, 0, 1)
	}
}

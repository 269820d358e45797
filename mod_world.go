package strata

import (
	"errors"
	"fmt"

	"github.com/strata3d/strata/voxel/chunk"
	"github.com/strata3d/strata/voxel/gen"
	"github.com/strata3d/strata/voxel/mesh"
	"github.com/strata3d/strata/voxel/noise"
	"github.com/strata3d/strata/voxel/stream"
	"github.com/strata3d/strata/voxel/task"
)

// VoxelWorldModule wires the whole streaming pipeline: prioritized chunk
// discovery, terrain generation, meshing and eviction. It expects a
// Viewpoint and a MeshSink to be installed alongside it, plus a logger and
// a profiler.
type VoxelWorldModule struct {
	Config WorldConfig

	// Pool overrides the module-owned worker pool, e.g. to share one
	// across worlds or to close it on shutdown.
	Pool *task.Pool
}

func (m VoxelWorldModule) Install(app *App, cmd *Commands) {
	cfg := m.Config.withDefaults().validated()
	log := app.Logger()

	pool := m.Pool
	if pool == nil {
		pool = task.NewPool(cfg.Workers, cfg.QueueDepth)
	}

	field := noise.NewField(cfg.Seed, cfg.WorldHeight)

	cmd.AddResources(
		&cfg,
		field,
		gen.New(field),
		chunk.NewStore(cfg.WorldExtent),
		stream.NewScheduler(),
		pool,
		newWorldState(log),
		&EditQueue{},
	)

	cmd.UseSystem(System(viewpointChunkSystem).InStage(PreUpdate)).
		UseSystem(System(editApplySystem).InStage(Update)).
		UseSystem(System(discoverySystem).InStage(Update)).
		UseSystem(System(generationApplySystem).InStage(PostUpdate)).
		UseSystem(System(meshDispatchSystem).InStage(PostUpdate)).
		UseSystem(System(meshApplySystem).InStage(PostUpdate)).
		UseSystem(System(evictionSystem).InStage(Finale))

	log.Infof("Voxel world ready: seed %d, render distance %d, height %d",
		cfg.Seed, cfg.RenderDistance, cfg.WorldHeight)
}

const (
	scopeDiscover = "discover"
	scopeEdit     = "edit"
	scopeGenerate = "generate"
	scopeMesh     = "mesh"
	scopeUpload   = "upload"
	scopeEvict    = "evict"
)

// viewpointChunkSystem projects the viewpoint onto the chunk grid and
// feeds the scheduler. Turning far enough off the old heading makes the
// scheduler throw its frontier away and reseed it at the current chunk.
func viewpointChunkSystem(vp *Viewpoint, st *WorldState, sched *stream.Scheduler) {
	st.viewChunk = vp.Chunk()
	sched.Update(st.viewChunk, vp.Forward)
}

// discoverySystem pops the most promising frontier chunks and hands them to
// the generator pool. It stands down while too much work is in flight and
// when the pool pushes back.
func discoverySystem(cfg *WorldConfig, st *WorldState, sched *stream.Scheduler, store *chunk.Store, g *gen.Generator, pool *task.Pool, prof *Profiler) {
	prof.Begin(scopeDiscover)
	defer prof.End(scopeDiscover)

	if st.genInFlight >= cfg.MaxInFlight {
		return
	}

	coords, ok := sched.NextChunks(cfg.DiscoverPerFrame, cfg.RenderDistance, store)
	if !ok {
		return
	}

	for _, c := range coords {
		if _, live := st.entries[c]; live {
			continue
		}
		if !store.Contains(c) {
			st.log.Debugf("Chunk %v is outside the world, skipping", c)
			continue
		}

		fut, err := task.Go(pool, func() *chunk.Data { return g.Chunk(c) })
		if err != nil {
			if errors.Is(err, task.ErrSaturated) {
				// The coords popped after this stay seen but unscheduled;
				// the next frontier reset re-offers whatever still matters.
				st.log.Debugf("Generator pool saturated, deferring discovery")
				return
			}
			panic(err)
		}

		st.entries[c] = &chunkEntry{phase: phaseGenerating, gen: fut}
		st.genInFlight++
		prof.Add("gen dispatched", 1)

		if st.genInFlight >= cfg.MaxInFlight {
			return
		}
	}
}

// generationApplySystem publishes finished chunk data into the store, a
// bounded number per frame. Publication happens here on the driving
// goroutine, never on a worker, so readers cannot observe a chunk mid-build.
func generationApplySystem(cfg *WorldConfig, st *WorldState, store *chunk.Store, prof *Profiler) {
	prof.Begin(scopeGenerate)
	defer prof.End(scopeGenerate)

	applied := 0
	for c, e := range st.entries {
		if applied >= cfg.ChunksPerFrame {
			break
		}
		if e.phase != phaseGenerating {
			continue
		}
		d, ok := e.gen.Poll()
		if !ok {
			continue
		}

		// Publication is the clean baseline; only later edits dirty it.
		d.MarkClean()
		store.SetChunkData(c, d)
		e.gen = nil
		e.empty = d.Empty()
		st.genInFlight--
		st.generated++
		applied++

		if e.empty {
			// Nothing to mesh, ever. The store remembers the emptiness so
			// the scheduler can sink this chunk's priority after a reset.
			e.phase = phaseMeshed
		} else {
			e.phase = phaseGenerated
		}
	}
	prof.Add("gen applied", applied)
}

// meshDispatchSystem queues meshing for chunks whose entire neighborhood
// has been generated. Eligibility is recomputed from scratch every frame; a
// neighbor evicted in between simply parks the chunk again.
func meshDispatchSystem(st *WorldState, store *chunk.Store, pool *task.Pool, prof *Profiler) {
	prof.Begin(scopeMesh)
	defer prof.End(scopeMesh)

	for c, e := range st.entries {
		if e.phase != phaseGenerated {
			continue
		}
		if !st.neighborsGenerated(c) {
			continue
		}

		data, ok := store.ChunkData(c)
		if !ok {
			panic(fmt.Sprintf("chunk %v is marked generated but has no data", c))
		}
		var nb mesh.Neighborhood
		for i, off := range mesh.DirOffsets {
			nd, _ := store.ChunkData(c.Offset(off[0], off[1], off[2]))
			nb[i] = nd
		}

		fut, err := task.Go(pool, func() *mesh.Mesh { return mesh.Build(data, nb) })
		if err != nil {
			// Saturated pool. The chunk stays parked at phaseGenerated and
			// gets another chance next frame.
			return
		}

		data.MarkClean()
		e.phase = phaseMeshing
		e.meshJob = fut
		st.meshInFlight++
		prof.Add("mesh dispatched", 1)
	}
}

// meshApplySystem uploads finished meshes to the sink, a bounded number per
// frame so one burst cannot stall the loop.
func meshApplySystem(cfg *WorldConfig, st *WorldState, sink MeshSink, prof *Profiler) {
	prof.Begin(scopeUpload)
	defer prof.End(scopeUpload)

	applied := 0
	for c, e := range st.entries {
		if applied >= cfg.MeshPerFrame {
			break
		}
		if e.phase != phaseMeshing {
			continue
		}
		m, ok := e.meshJob.Poll()
		if !ok {
			continue
		}

		e.meshJob = nil
		e.phase = phaseMeshed
		st.meshInFlight--
		st.meshed++
		applied++

		if e.handle != "" {
			// A re-mesh after an edit replaces the previous upload.
			sink.DiscardChunkMesh(e.handle)
			e.handle = ""
		}
		if m.Empty() {
			// Every face came out buried or water-on-water.
			continue
		}

		e.handle = sink.UploadChunkMesh(ChunkMeshUpload{
			Coord:     c,
			Mesh:      m,
			Transform: c.Origin(),
			Bounds:    mesh.LocalAABB(),
		})
	}
	prof.Add("meshed", applied)
}

// evictionSystem unloads chunks that drifted outside the render distance.
// Entries with work still in flight are left alone until the result lands.
func evictionSystem(cfg *WorldConfig, st *WorldState, store *chunk.Store, sink MeshSink, prof *Profiler) {
	prof.Begin(scopeEvict)
	defer prof.End(scopeEvict)

	evicted := 0
	for c, e := range st.entries {
		if c.Chebyshev(st.viewChunk) <= cfg.RenderDistance {
			continue
		}
		if e.inFlight() {
			continue
		}

		if e.handle != "" {
			sink.DiscardChunkMesh(e.handle)
		}
		store.ClearChunk(c)
		delete(st.entries, c)
		evicted++
	}
	prof.Add("evicted", evicted)
}

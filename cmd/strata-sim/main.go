package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strata3d/strata"
	"github.com/strata3d/strata/voxel/chunk"
	"github.com/strata3d/strata/voxel/task"
	"github.com/strata3d/strata/voxel/trace"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to world config yaml (defaults apply when empty)")
		seed       = flag.Int64("seed", 0, "world seed override (0 keeps the config value)")
		ticks      = flag.Uint64("ticks", 0, "stop after this many frames (0 runs until interrupted)")
		statsEvery = flag.Uint64("stats_every", 120, "log pipeline stats every N frames")
		dig        = flag.Bool("dig", true, "carve terrain along the flight path to exercise re-meshing")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := strata.NewDefaultLogger("strata-sim", *debug)

	cfg := strata.DefaultWorldConfig()
	if *configPath != "" {
		loaded, err := strata.LoadWorldConfig(*configPath)
		if err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	pool := task.NewPool(cfg.Workers, cfg.QueueDepth)
	defer pool.Close()

	app := strata.NewApp()
	app.Commands().AddResources(logger)
	app.UseModules(
		strata.TimeModule{},
		strata.ProfilerModule{},
		strata.ViewpointModule{Position: mgl32.Vec3{8, 72, 8}},
		strata.FlightPathModule{
			Waypoints: []mgl32.Vec3{
				{8, 72, -400},
				{-300, 96, -400},
				{-300, 96, 8},
				{8, 72, 8},
			},
			Speed: 48,
		},
		strata.RendererModule{Name: "collector", Sink: strata.NewCollectorSink()},
		strata.VoxelWorldModule{Config: cfg, Pool: pool},
	)

	if *dig {
		app.UseSystem(strata.System(digSystem).InStage(strata.Update))
	}

	every := *statsEvery
	app.UseSystem(strata.System(func(tm *strata.Time, st *strata.WorldState, prof *strata.Profiler, log strata.Logger) {
		if every == 0 || tm.Frame%every != 0 {
			return
		}
		log.Infof("frame %d: live %d, in flight %d, generated %d, meshed %d",
			tm.Frame, st.Live(), st.InFlight(), st.Generated(), st.Meshed())
		if log.DebugEnabled() {
			log.Debugf("\n%s", prof.Report())
		}
		prof.Reset()
	}).InStage(strata.Finale))

	if limit := *ticks; limit > 0 {
		app.UseSystem(strata.System(func(tm *strata.Time, cmd *strata.Commands) {
			if tm.Frame >= limit {
				cmd.Quit()
			}
		}).InStage(strata.Finale))
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Infof("Streaming around a flight path, seed %d", cfg.Seed)
	app.Run(ctx)
	logger.Infof("Done")
}

// digSystem looks down the flight direction every few seconds and carves
// a small crater where the ray lands, pushing edited chunks back through
// the meshing pipeline.
func digSystem(tm *strata.Time, vp *strata.Viewpoint, store *chunk.Store, q *strata.EditQueue, log strata.Logger) {
	if tm.Frame == 0 || tm.Frame%180 != 0 {
		return
	}
	h := trace.March(store, vp.Position, vp.Forward, 160)
	if !h.Hit {
		return
	}
	center := mgl32.Vec3{
		float32(h.Block[0]) + 0.5,
		float32(h.Block[1]) + 0.5,
		float32(h.Block[2]) + 0.5,
	}
	q.CarveSphere(center, 3)
	log.Debugf("Carving %s at %v, %0.1f units out", h.Material, h.Block, h.T)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

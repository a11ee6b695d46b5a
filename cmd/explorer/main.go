package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/explorer/internal/config"
	"github.com/banshee-data/explorer/internal/explore"
	"github.com/banshee-data/explorer/internal/frontier"
	"github.com/banshee-data/explorer/internal/grid"
	"github.com/banshee-data/explorer/internal/monitor"
	"github.com/banshee-data/explorer/internal/nav"
	"github.com/banshee-data/explorer/internal/storage/sqlite"
	"github.com/banshee-data/explorer/internal/version"
)

var (
	configFile = flag.String("config", "", "Path to tuning config JSON (optional)")
	listen     = flag.String("listen", "", "HTTP listen address (overrides config)")
	devMode    = flag.Bool("dev", false, "Run with the built-in simulated robot")
	dbFile     = flag.String("db", "", "Path to the goal history database (overrides config)")
	plotDir    = flag.String("plots", "", "Directory for completion plots (overrides config)")
	verbose    = flag.Bool("verbose", false, "Enable per-tick diagnostic logging")
)

func main() {
	flag.Parse()

	log.Printf("explorer %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	if *verbose {
		explore.SetLogWriters(os.Stderr, os.Stderr, os.Stderr)
	} else {
		explore.SetLogWriters(os.Stderr, nil, nil)
	}

	tuning := config.EmptyTuningConfig()
	if *configFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *listen != "" {
		tuning.ListenAddr = listen
	}
	if *dbFile != "" {
		tuning.DBPath = dbFile
	}
	if *plotDir != "" {
		tuning.PlotDir = plotDir
	}

	snapshots := grid.NewSnapshotStore()

	// Navigation backend. The loop only knows the nav.Service interface;
	// dev mode plugs in the simulator as both service and position source.
	var svc nav.Service
	var position explore.PositionProvider
	if *devMode {
		sim := nav.NewSimWorld(nav.SimWorldConfig{}, snapshots)
		svc = sim
		position = sim
		log.Println("Dev mode: using simulated robot and world")
	} else {
		log.Fatal("No navigation transport configured; run with -dev to use the built-in simulator")
	}

	var goalStore *sqlite.GoalStore
	var sink nav.GoalSink
	if path := tuning.GetDBPath(); path != "" {
		var err error
		goalStore, err = sqlite.Open(path)
		if err != nil {
			log.Fatalf("Failed to open goal database: %v", err)
		}
		defer goalStore.Close()
		sink = goalStore
	} else {
		log.Println("Goal recording disabled (empty db path)")
	}

	controller := nav.NewController(nav.ControllerConfig{
		Service:       svc,
		Sink:          sink,
		AcceptTimeout: tuning.GetGoalAcceptTimeout(),
		ResultTimeout: tuning.GetGoalResultTimeout(),
	})

	loop, err := explore.NewLoop(explore.LoopConfig{
		Snapshots:  snapshots,
		Selector:   frontier.NewSelector(),
		Controller: controller,
		Position:   position,
		TickPeriod: tuning.GetTickPeriod(),
	})
	if err != nil {
		log.Fatalf("Failed to build exploration loop: %v", err)
	}

	var plotter *monitor.MapPlotter
	if dir := tuning.GetPlotDir(); dir != "" {
		plotter = monitor.NewMapPlotter()
		outDir := monitor.MakePlotOutputDir(dir)
		if err := plotter.Start(outDir); err != nil {
			log.Fatalf("Failed to start plot recorder: %v", err)
		}
		log.Printf("Recording coverage plots to %s", outDir)
	}

	wsCfg := monitor.WebServerConfig{
		Address:    tuning.GetListenAddr(),
		Loop:       loop,
		Snapshots:  snapshots,
		Controller: controller,
		Tuning:     tuning,
	}
	if goalStore != nil {
		wsCfg.Goals = goalStore
	}
	ws := monitor.NewWebServer(wsCfg)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Exploration loop routine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Exploration loop error: %v", err)
			stop()
			return
		}
		log.Print("Exploration loop routine terminated")
	}()

	// Coverage sampling and completion summary routine
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(tuning.GetTickPeriod())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-loop.Done():
				mapGrid, costmap := snapshots.Snapshot()
				cov := grid.ComputeCoverage(mapGrid, costmap)
				log.Printf("Exploration complete: %d/%d cells known (%.1f%%)",
					cov.TotalCells-cov.UnknownCells, cov.TotalCells, cov.ExploredFraction*100)
				if plotter != nil {
					plotter.Stop()
					count, err := plotter.GeneratePlots(mapGrid, costmap)
					if err != nil {
						log.Printf("Plot generation error: %v", err)
					} else {
						log.Printf("Wrote %d plots to %s", count, plotter.OutputDir())
					}
				}
				return
			case <-ticker.C:
				if plotter != nil {
					plotter.Sample(snapshots.Snapshot())
				}
			}
		}
	}()

	// Monitor HTTP server routine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("Monitor server error: %v", err)
		}
		log.Print("Monitor server routine stopped")
	}()

	wg.Wait()
	log.Print("Graceful shutdown complete")
}

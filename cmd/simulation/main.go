package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"assembly-sim/internal/audio"
	"assembly-sim/internal/collision"
	"assembly-sim/internal/config"
	"assembly-sim/internal/material"
	"assembly-sim/internal/simulation"
	"assembly-sim/internal/syncnet"
	"assembly-sim/internal/visualization"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configPath := flag.String("config", "", "YAML settings file")
	materialsPath := flag.String("materials", "", "YAML material table, overrides the config")
	ticks := flag.Int("ticks", -1, "ticks to run, 0 runs until interrupted")
	view := flag.Bool("view", false, "open a window instead of running headless")
	syncURL := flag.String("sync", "", "websocket URL motion packets are sent to")
	wavPath := flag.String("wav", "", "write collision cues to this WAV file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *materialsPath != "" {
		cfg.Materials = *materialsPath
	}
	if *ticks >= 0 {
		cfg.Ticks = *ticks
	}
	if *syncURL != "" {
		cfg.SyncURL = *syncURL
	}
	if *wavPath != "" {
		cfg.WAVOutput = *wavPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *view); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Error: %v", err)
	}
	fmt.Println("\nApplication finished.")
}

func run(ctx context.Context, cfg *config.Config, view bool) error {
	tbl := material.DefaultTable()
	if cfg.Materials != "" {
		var err error
		if tbl, err = material.LoadTable(cfg.Materials); err != nil {
			return err
		}
	}

	opts := simulation.Options{}
	cues := audio.NewSink()
	opts.Cues = cues

	var motion collision.MotionSync = &syncnet.Recorder{}
	if cfg.SyncURL != "" {
		sender, err := syncnet.Dial(ctx, cfg.SyncURL)
		if err != nil {
			return err
		}
		defer sender.Close()
		motion = sender
	}
	opts.Sync = motion

	if cfg.WatchMaterials {
		w, err := material.NewWatcher(cfg.Materials)
		if err != nil {
			return fmt.Errorf("watch %s: %w", cfg.Materials, err)
		}
		defer w.Close()
		opts.Materials = w.Tables
		go func() {
			for err := range w.Errors {
				log.Printf("materials: reload failed: %v", err)
			}
		}()
	}

	sim, err := simulation.BuildDemo(cfg, tbl, opts)
	if err != nil {
		return err
	}

	if view {
		ebiten.SetWindowSize(1024, 768)
		ebiten.SetWindowTitle("Assembly Sandbox")
		ebiten.SetTPS(cfg.TickRate)
		err = ebiten.RunGame(visualization.NewRenderer(sim, visualization.NewPCAProjector()))
	} else {
		err = sim.Run(ctx, cfg.Ticks)
	}

	if rec, ok := motion.(*syncnet.Recorder); ok {
		log.Printf("sync: recorded %d motion packets", rec.Len())
	}
	if cfg.WAVOutput != "" {
		if werr := cues.WriteWAV(cfg.WAVOutput); werr != nil {
			return werr
		}
		log.Printf("audio: wrote %d cues to %s", len(cues.Events()), cfg.WAVOutput)
	}
	return err
}

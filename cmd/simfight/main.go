// Package main provides the simfight binary: a headless, scripted run of
// the boss-fight simulation. It pits the pilot against the boss at a chosen
// tuning, narrates the fight into structured logs, and can watch a tuning
// directory and restart the fight whenever the numbers change.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/kestrelforge/revenant/internal/config"
	"github.com/kestrelforge/revenant/internal/game/encounter"
	"github.com/kestrelforge/revenant/internal/game/rng"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
	"github.com/kestrelforge/revenant/internal/observability"
	"github.com/kestrelforge/revenant/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	preset := flag.String("preset", "", "tuning preset override (default | relaxed)")
	tuningDir := flag.String("tuning-dir", "", "directory of tuning YAML overrides")
	seed := flag.Int64("seed", 0, "rng seed override; 0 = non-deterministic")
	watch := flag.Bool("watch", false, "watch the tuning directory and restart the fight on changes")
	duration := flag.Duration("duration", 2*time.Minute, "wall-clock cap on the run; 0 = unlimited")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	// Explicit flags win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "preset":
			cfg.Simulation.Preset = *preset
		case "tuning-dir":
			cfg.Simulation.TuningDir = *tuningDir
		case "seed":
			cfg.Simulation.Seed = *seed
		case "watch":
			cfg.Simulation.WatchTuning = *watch
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("validating config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Resolve tuning: preset first, then any YAML overrides on top.
	tuningStart := time.Now()
	base, err := ruleset.PresetByName(cfg.Simulation.Preset)
	if err != nil {
		logger.Fatal("resolving tuning preset", zap.Error(err))
	}
	tuning := base
	if cfg.Simulation.TuningDir != "" {
		tuning, err = ruleset.LoadDir(cfg.Simulation.TuningDir, base)
		if err != nil {
			logger.Fatal("loading tuning overrides", zap.Error(err))
		}
	}
	logger.Info("tuning resolved",
		zap.String("preset", cfg.Simulation.Preset),
		zap.String("tuning_dir", cfg.Simulation.TuningDir),
		zap.Duration("elapsed", time.Since(tuningStart)),
	)

	var src rng.Source
	if cfg.Simulation.Seed != 0 {
		src = rng.NewSeededSource(cfg.Simulation.Seed)
		logger.Info("deterministic run", zap.Int64("seed", cfg.Simulation.Seed))
	} else {
		src = rng.NewCryptoSource()
	}
	src = rng.NewLoggedSource(src, logger)

	ctx := context.Background()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}
	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	p, err := newPilot(tuning, src, cfg.Simulation.MaxFrameDelta, cfg.Simulation.WatchTuning, runCancel, logger)
	if err != nil {
		logger.Fatal("building experience", zap.Error(err))
	}
	runner := encounter.NewRunner(cfg.Simulation.FrameInterval, p.Step, logger)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("simulation", &server.FuncService{
		StartFn: func() error {
			runner.Run(runCtx)
			return nil
		},
		StopFn: runCancel,
	})

	if cfg.Simulation.WatchTuning {
		watcher, err := ruleset.NewWatcher(cfg.Simulation.TuningDir)
		if err != nil {
			logger.Fatal("starting tuning watcher", zap.Error(err))
		}
		lifecycle.Add("tuning-watch", &server.FuncService{
			StartFn: func() error {
				for {
					select {
					case path, ok := <-watcher.Events:
						if !ok {
							return nil
						}
						merged, err := ruleset.LoadDir(cfg.Simulation.TuningDir, base)
						if err != nil {
							logger.Warn("tuning reload rejected", zap.Error(err))
							continue
						}
						p.ProposeTuning(merged)
						logger.Info("tuning reloaded", zap.String("changed", path))
					case err, ok := <-watcher.Errors:
						if !ok {
							return nil
						}
						logger.Warn("tuning watcher error", zap.Error(err))
					}
				}
			},
			StopFn: func() { _ = watcher.Close() },
		})
	}

	logger.Info("simulation initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Duration("frame_interval", cfg.Simulation.FrameInterval),
		zap.Bool("watch_tuning", cfg.Simulation.WatchTuning),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("simulation error", zap.Error(err))
	}
}

// Command steereval replays a recorded scene through the steering library
// and writes the resulting forces as CSV.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/steer/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	scenePath := flag.String("scene", "", "Path to the scene YAML to evaluate")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	seed := flag.Int64("seed", 0, "RNG seed for wander (0 = config, then time-based)")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	level := cfg.Derived.LogLevel
	if *logLevel != "" {
		if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
			slog.Error("invalid log level", "level", *logLevel, "error", err)
			os.Exit(1)
		}
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *scenePath == "" {
		logger.Error("no scene given", "flag", "-scene")
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Simulation.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	dir := cfg.Telemetry.OutputDir
	if *outputDir != "" {
		dir = *outputDir
	}

	opts := Options{
		ScenePath: *scenePath,
		OutputDir: dir,
		Seed:      rngSeed,
	}
	if err := Run(cfg, opts, logger); err != nil {
		logger.Error("evaluation failed", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/components"
	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/scene"
	"github.com/pthm-cable/steer/steer"
	"github.com/pthm-cable/steer/systems"
	"github.com/pthm-cable/steer/telemetry"
	"github.com/pthm-cable/steer/vehicle"
)

// Options selects what to evaluate and where results go.
type Options struct {
	ScenePath string
	OutputDir string // empty disables CSV output
	Seed      int64
}

// Run evaluates every frame of the scene in order.
func Run(cfg *config.Config, opts Options, logger *slog.Logger) error {
	_, err := evaluate(cfg, opts, logger)
	return err
}

func evaluate(cfg *config.Config, opts Options, logger *slog.Logger) ([]telemetry.FrameSummary, error) {
	sc, err := scene.Load(opts.ScenePath)
	if err != nil {
		return nil, err
	}

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	counter := telemetry.NewAnnotationCounter(logger)
	lib := &steer.Library{
		Annotator:             counter,
		SeparationMinDistance: cfg.Steering.SeparationMinDistance,
	}

	world := ecs.NewWorld()
	sys := systems.NewSteeringSystem(world, cfg, sc, systems.NewCatalog(), lib, rand.New(rand.NewSource(opts.Seed)), logger)
	perf := telemetry.NewPerfCollector(len(sc.Frames))
	sys.ObserveBehaviors(func(kind scene.Kind, d time.Duration) {
		perf.RecordBehavior(string(kind), d)
	})

	logger.Info("starting evaluation",
		"scene", sc.Name,
		"agents", len(sc.Agents),
		"frames", len(sc.Frames),
		"seed", opts.Seed,
		"proximity", cfg.Proximity.Kind,
	)

	summaries := make([]telemetry.FrameSummary, 0, len(sc.Frames))
	var now float64
	for i, f := range sc.Frames {
		dt := sc.FrameElapsedTime(i, cfg.Simulation.ElapsedTime)
		now += dt
		counter.Reset()

		perf.StartFrame()
		perf.StartPhase(telemetry.PhaseApplyFrame)
		changes := sys.ApplyFrame(f)
		perf.StartPhase(telemetry.PhaseUpdateTokens)
		sys.UpdateTokens()
		perf.StartPhase(telemetry.PhaseEvaluate)
		if err := sys.Evaluate(dt); err != nil {
			return summaries, fmt.Errorf("frame %d: %w", sys.Frame(), err)
		}

		perf.StartPhase(telemetry.PhaseTelemetry)
		summary, err := record(sys, out, changes, now, cfg.Telemetry.PerBehavior)
		if err != nil {
			return summaries, err
		}
		summary.SetAnnotations(counter)
		perf.EndFrame()

		if err := out.WriteFrame(summary); err != nil {
			return summaries, err
		}
		summary.LogStats(logger)
		summaries = append(summaries, summary)
	}

	stats := perf.Stats()
	stats.LogStats(logger)
	if err := out.WritePerf(stats, sys.Frame()); err != nil {
		return summaries, err
	}
	return summaries, nil
}

// record writes the frame's forces and summarizes their magnitudes.
func record(sys *systems.SteeringSystem, out *telemetry.OutputManager, changes systems.FrameChanges, now float64, perBehavior bool) (telemetry.FrameSummary, error) {
	frame := sys.Frame()
	var records []telemetry.ForceRecord
	magnitudes := make([]float64, 0, sys.Count())

	sys.Each(func(name string, _ *vehicle.Agent, st *components.Steering) {
		records = append(records, telemetry.ForceRecords(frame, now, name, st, perBehavior)...)
		magnitudes = append(magnitudes, r3.Norm(st.Force))
	})
	if err := out.WriteForces(records); err != nil {
		return telemetry.FrameSummary{}, err
	}

	summary := telemetry.FrameSummary{
		Frame:   frame,
		Time:    now,
		Agents:  sys.Count(),
		Spawned: len(changes.Spawned),
		Removed: len(changes.Removed),
	}
	summary.SetForceStats(telemetry.ComputeForceStats(magnitudes))
	return summary, nil
}

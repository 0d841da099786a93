package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few frames
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseUpdateTokens)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseEvaluate)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseUpdateTokens]; !ok {
		t.Error("expected update_tokens phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseEvaluate]; !ok {
		t.Error("expected evaluate phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseUpdateTokens)
		pc.EndFrame()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration after window filled")
	}

	if stats.FramesPerSecond <= 0 {
		t.Error("expected positive frames per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgFrameDuration != 0 {
		t.Error("expected zero avg frame duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgFrameDuration: 2 * time.Millisecond,
		FramesPerSecond:  500,
		PhasePct: map[string]float64{
			PhaseEvaluate:     75,
			PhaseUpdateTokens: 20,
		},
	}

	row := stats.ToCSV(12)
	if row.WindowEnd != 12 || row.AvgFrameUS != 2000 {
		t.Errorf("unexpected row header fields: %+v", row)
	}
	if row.EvaluatePct != 75 || row.UpdateTokensPct != 20 || row.ApplyFramePct != 0 {
		t.Errorf("unexpected phase percentages: %+v", row)
	}
}

func TestPerfCollector_BehaviorTiming(t *testing.T) {
	pc := NewPerfCollector(4)

	for i := 0; i < 2; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseEvaluate)
		pc.RecordBehavior("seek", 10*time.Microsecond)
		pc.RecordBehavior("seek", 30*time.Microsecond)
		pc.RecordBehavior("wander", 5*time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if got := stats.BehaviorAvg["seek"]; got != 40*time.Microsecond {
		t.Errorf("seek avg = %v, want 40µs per frame", got)
	}
	if got := stats.BehaviorAvg["wander"]; got != 5*time.Microsecond {
		t.Errorf("wander avg = %v, want 5µs per frame", got)
	}

	// A frame without behavior records starts from zero.
	pc.StartFrame()
	pc.EndFrame()
	if got := pc.Stats().BehaviorAvg["seek"]; got != 80*time.Microsecond/3 {
		t.Errorf("seek avg over three frames = %v", got)
	}
}

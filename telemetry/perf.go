package telemetry

import (
	"log/slog"
	"slices"
	"time"
)

// Phase names for one evaluated frame.
const (
	PhaseApplyFrame   = "apply_frame"
	PhaseUpdateTokens = "update_tokens"
	PhaseEvaluate     = "evaluate"
	PhaseTelemetry    = "telemetry"
)

// Phases lists the frame phases in execution order.
var Phases = []string{PhaseApplyFrame, PhaseUpdateTokens, PhaseEvaluate, PhaseTelemetry}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
	Behaviors     map[string]time.Duration // summed over all agents
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	behaviors     map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.behaviors = make(map[string]time.Duration)
	p.lastPhase = ""
}

// RecordBehavior adds the time one behavior evaluation took to the current
// frame. It does not interrupt phase timing.
func (p *PerfCollector) RecordBehavior(kind string, d time.Duration) {
	if p.behaviors == nil {
		p.behaviors = make(map[string]time.Duration)
	}
	p.behaviors[kind] += d
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
		Behaviors:     p.behaviors,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Frame timing
	AvgFrameDuration time.Duration
	MinFrameDuration time.Duration
	MaxFrameDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total frame time
	PhasePct map[string]float64

	// Average time per frame spent in each behavior kind
	BehaviorAvg map[string]time.Duration

	// Throughput
	FramesPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:    make(map[string]time.Duration),
			PhasePct:    make(map[string]float64),
			BehaviorAvg: make(map[string]time.Duration),
		}
	}

	var totalFrame time.Duration
	var minFrame, maxFrame time.Duration
	phaseSum := make(map[string]time.Duration)
	behaviorSum := make(map[string]time.Duration)

	// Iterate over valid samples
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalFrame += s.FrameDuration

		if i == 0 || s.FrameDuration < minFrame {
			minFrame = s.FrameDuration
		}
		if s.FrameDuration > maxFrame {
			maxFrame = s.FrameDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
		for kind, dur := range s.Behaviors {
			behaviorSum[kind] += dur
		}
	}

	avgFrame := totalFrame / time.Duration(p.sampleCount)

	// Calculate phase averages and percentages
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgFrame > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgFrame) * 100
		}
	}

	behaviorAvg := make(map[string]time.Duration, len(behaviorSum))
	for kind, sum := range behaviorSum {
		behaviorAvg[kind] = sum / time.Duration(p.sampleCount)
	}

	// Calculate throughput
	var framesPerSec float64
	if avgFrame > 0 {
		framesPerSec = float64(time.Second) / float64(avgFrame)
	}

	return PerfStats{
		AvgFrameDuration: avgFrame,
		MinFrameDuration: minFrame,
		MaxFrameDuration: maxFrame,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		BehaviorAvg:      behaviorAvg,
		FramesPerSecond:  framesPerSec,
	}
}

// LogStats logs performance statistics using logger.
func (s PerfStats) LogStats(logger *slog.Logger) {
	attrs := []any{
		"avg_frame_us", s.AvgFrameDuration.Microseconds(),
		"min_frame_us", s.MinFrameDuration.Microseconds(),
		"max_frame_us", s.MaxFrameDuration.Microseconds(),
		"frames_per_sec", int(s.FramesPerSecond),
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	// Behaviors in name order so runs diff cleanly
	kinds := make([]string, 0, len(s.BehaviorAvg))
	for kind := range s.BehaviorAvg {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		attrs = append(attrs, kind+"_us", s.BehaviorAvg[kind].Microseconds())
	}

	logger.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd       int     `csv:"window_end"`
	AvgFrameUS      int64   `csv:"avg_frame_us"`
	MinFrameUS      int64   `csv:"min_frame_us"`
	MaxFrameUS      int64   `csv:"max_frame_us"`
	FramesPerSec    float64 `csv:"frames_per_sec"`
	ApplyFramePct   float64 `csv:"apply_frame_pct"`
	UpdateTokensPct float64 `csv:"update_tokens_pct"`
	EvaluatePct     float64 `csv:"evaluate_pct"`
	TelemetryPct    float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgFrameUS:      s.AvgFrameDuration.Microseconds(),
		MinFrameUS:      s.MinFrameDuration.Microseconds(),
		MaxFrameUS:      s.MaxFrameDuration.Microseconds(),
		FramesPerSec:    s.FramesPerSecond,
		ApplyFramePct:   s.PhasePct[PhaseApplyFrame],
		UpdateTokensPct: s.PhasePct[PhaseUpdateTokens],
		EvaluatePct:     s.PhasePct[PhaseEvaluate],
		TelemetryPct:    s.PhasePct[PhaseTelemetry],
	}
}

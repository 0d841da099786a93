package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/steer/components"
)

// CombinedBehavior labels the row carrying an agent's combined force.
const CombinedBehavior = "combined"

// ForceRecord is one steering force in forces.csv.
type ForceRecord struct {
	Frame     int     `csv:"frame"`
	Time      float64 `csv:"time"`
	Agent     string  `csv:"agent"`
	Behavior  string  `csv:"behavior"`
	Weight    float64 `csv:"weight"`
	FX        float64 `csv:"fx"`
	FY        float64 `csv:"fy"`
	FZ        float64 `csv:"fz"`
	Magnitude float64 `csv:"magnitude"`
}

func newForceRecord(frame int, t float64, agent, behavior string, weight float64, f r3.Vec) ForceRecord {
	return ForceRecord{
		Frame:     frame,
		Time:      t,
		Agent:     agent,
		Behavior:  behavior,
		Weight:    weight,
		FX:        f.X,
		FY:        f.Y,
		FZ:        f.Z,
		Magnitude: r3.Norm(f),
	}
}

// ForceRecords flattens an agent's steering result. The combined force
// always comes first; perBehavior adds one row per contribution.
func ForceRecords(frame int, t float64, agent string, st *components.Steering, perBehavior bool) []ForceRecord {
	out := []ForceRecord{newForceRecord(frame, t, agent, CombinedBehavior, 1, st.Force)}
	if !perBehavior {
		return out
	}
	for _, c := range st.Contributions {
		out = append(out, newForceRecord(frame, t, agent, string(c.Kind), c.Weight, c.Force))
	}
	return out
}

// FrameSummary holds aggregated statistics for one evaluated frame.
type FrameSummary struct {
	Frame   int     `csv:"frame"`
	Time    float64 `csv:"time"`
	Agents  int     `csv:"agents"`
	Spawned int     `csv:"spawned"`
	Removed int     `csv:"removed"`

	// Combined force magnitude distribution
	ForceMean float64 `csv:"force_mean"`
	ForceStd  float64 `csv:"force_std"`
	ForceP10  float64 `csv:"force_p10"`
	ForceP50  float64 `csv:"force_p50"`
	ForceP90  float64 `csv:"force_p90"`
	ForceMax  float64 `csv:"force_max"`

	// Annotation counts
	ObstacleAvoidances int `csv:"obstacle_avoidances"`
	NeighborAvoidances int `csv:"neighbor_avoidances"`
	CloseNeighbors     int `csv:"close_neighbors"`
	PathCorrections    int `csv:"path_corrections"`
	Pursuits           int `csv:"pursuits"`
}

// ForceStats summarizes a set of force magnitudes.
type ForceStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// ComputeForceStats calculates mean, standard deviation, percentiles and
// maximum. Fewer than two values have zero deviation; none give all zeros.
func ComputeForceStats(values []float64) ForceStats {
	n := len(values)
	if n == 0 {
		return ForceStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s := ForceStats{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
		Max:  sorted[n-1],
	}
	if n > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s
}

// SetForceStats copies s into the summary.
func (f *FrameSummary) SetForceStats(s ForceStats) {
	f.ForceMean = s.Mean
	f.ForceStd = s.Std
	f.ForceP10 = s.P10
	f.ForceP50 = s.P50
	f.ForceP90 = s.P90
	f.ForceMax = s.Max
}

// SetAnnotations copies the counter's totals into the summary.
func (f *FrameSummary) SetAnnotations(c *AnnotationCounter) {
	f.ObstacleAvoidances = c.ObstacleAvoidances
	f.NeighborAvoidances = c.NeighborAvoidances
	f.CloseNeighbors = c.CloseNeighbors
	f.PathCorrections = c.PathCorrections
	f.Pursuits = c.Pursuits
}

// LogValue implements slog.LogValuer for structured logging.
func (f FrameSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", f.Frame),
		slog.Float64("time", f.Time),
		slog.Int("agents", f.Agents),
		slog.Int("spawned", f.Spawned),
		slog.Int("removed", f.Removed),
		slog.Float64("force_mean", f.ForceMean),
		slog.Float64("force_std", f.ForceStd),
		slog.Float64("force_p50", f.ForceP50),
		slog.Float64("force_max", f.ForceMax),
		slog.Int("obstacle_avoidances", f.ObstacleAvoidances),
		slog.Int("neighbor_avoidances", f.NeighborAvoidances),
		slog.Int("close_neighbors", f.CloseNeighbors),
		slog.Int("path_corrections", f.PathCorrections),
		slog.Int("pursuits", f.Pursuits),
	)
}

// LogStats logs the frame summary using logger.
func (f FrameSummary) LogStats(logger *slog.Logger) {
	logger.Info("frame",
		"frame", f.Frame,
		"time", f.Time,
		"agents", f.Agents,
		"force_mean", f.ForceMean,
		"force_p90", f.ForceP90,
		"force_max", f.ForceMax,
		"obstacle_avoidances", f.ObstacleAvoidances,
		"neighbor_avoidances", f.NeighborAvoidances,
	)
}

// Package telemetry records steering results: per-agent forces, per-frame
// summaries and evaluator timing, written as CSV.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/steer/config"
)

// OutputManager handles structured evaluation output with CSV logging.
type OutputManager struct {
	dir       string
	forceFile *os.File
	frameFile *os.File
	perfFile  *os.File

	// Track if headers have been written
	forceHeaderWritten bool
	frameHeaderWritten bool
	perfHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	var err error
	if om.forceFile, err = os.Create(filepath.Join(dir, "forces.csv")); err != nil {
		return nil, fmt.Errorf("creating forces.csv: %w", err)
	}
	if om.frameFile, err = os.Create(filepath.Join(dir, "frames.csv")); err != nil {
		om.forceFile.Close()
		return nil, fmt.Errorf("creating frames.csv: %w", err)
	}
	if om.perfFile, err = os.Create(filepath.Join(dir, "perf.csv")); err != nil {
		om.forceFile.Close()
		om.frameFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteForces appends force records to forces.csv.
func (om *OutputManager) WriteForces(records []ForceRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := writeRecords(records, om.forceFile, &om.forceHeaderWritten); err != nil {
		return fmt.Errorf("writing forces: %w", err)
	}
	return nil
}

// WriteFrame appends a frame summary to frames.csv.
func (om *OutputManager) WriteFrame(summary FrameSummary) error {
	if om == nil {
		return nil
	}
	if err := writeRecords([]FrameSummary{summary}, om.frameFile, &om.frameHeaderWritten); err != nil {
		return fmt.Errorf("writing frame summary: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	if err := writeRecords([]PerfStatsCSV{stats.ToCSV(windowEnd)}, om.perfFile, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// writeRecords marshals records, with a header only on the first write.
func writeRecords[T any](records []T, f *os.File, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.forceFile, om.frameFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

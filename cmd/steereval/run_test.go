package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/steer/config"
)

const crossing = "../../scene/testdata/crossing.yaml"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEvaluateCrossing(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	dir := t.TempDir()

	summaries, err := evaluate(cfg, Options{ScenePath: crossing, OutputDir: dir, Seed: 7}, quietLogger())
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, []int{3, 2, 3}, []int{summaries[0].Agents, summaries[1].Agents, summaries[2].Agents})
	assert.Equal(t, 3, summaries[0].Spawned)
	assert.Equal(t, 1, summaries[1].Removed)
	assert.Equal(t, 1, summaries[2].Spawned)
	assert.InDelta(t, 0.1, summaries[0].Time, 1e-9)
	assert.InDelta(t, 0.3, summaries[1].Time, 1e-9)
	assert.InDelta(t, 0.4, summaries[2].Time, 1e-9)

	for _, s := range summaries {
		// Combined forces are clipped to each agent's max force.
		assert.LessOrEqual(t, s.ForceMax, 0.3+1e-9)
		assert.Positive(t, s.Pursuits)
	}

	for _, name := range []string{"forces.csv", "frames.csv", "perf.csv", "config.yaml"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	data, err := os.ReadFile(filepath.Join(dir, "forces.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 1+3+2+3)
}

func TestEvaluatePerBehavior(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Telemetry.PerBehavior = true
	dir := t.TempDir()

	_, err = evaluate(cfg, Options{ScenePath: crossing, OutputDir: dir, Seed: 7}, quietLogger())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "forces.csv"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, ",pursuit,")
	assert.Contains(t, text, ",stay_on_path,")
	assert.Contains(t, text, ",combined,")
}

func TestEvaluateWithoutOutput(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	summaries, err := evaluate(cfg, Options{ScenePath: crossing, Seed: 1}, quietLogger())
	require.NoError(t, err)
	assert.Len(t, summaries, 3)
}

func TestRunMissingScene(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	err = Run(cfg, Options{ScenePath: filepath.Join(t.TempDir(), "absent.yaml")}, quietLogger())
	assert.Error(t, err)
}

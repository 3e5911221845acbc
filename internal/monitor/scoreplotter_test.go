package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formsense-data/form.report/internal/engine"
)

func TestScorePlotterGeneratePlots(t *testing.T) {
	sp := NewScorePlotter(engine.ExerciseSquat)
	dir := t.TempDir()
	require.NoError(t, sp.Start(dir))

	for i := 0; i < 30; i++ {
		sp.Sample(engine.FrameEvaluationResult{
			TimestampMs: int64(i) * 33,
			Score:       float64(70 + i%30),
			Phase:       engine.PhaseDown,
			Angles:      map[string]float64{"knee": 160 - float64(i)*2, "left_knee": 161 - float64(i)*2},
		})
	}
	sp.Stop()

	require.Equal(t, 30, sp.SampleCount())

	count, err := sp.GeneratePlots()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, name := range []string{"score.png", "angles.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestScorePlotterIgnoresSamplesWhenStopped(t *testing.T) {
	sp := NewScorePlotter(engine.ExerciseSquat)
	sp.Sample(engine.FrameEvaluationResult{Score: 90})
	assert.Zero(t, sp.SampleCount())
}

func TestScorePlotterNoSamples(t *testing.T) {
	sp := NewScorePlotter(engine.ExerciseSquat)
	require.NoError(t, sp.Start(t.TempDir()))
	count, err := sp.GeneratePlots()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMakePlotOutputDir(t *testing.T) {
	dir := MakePlotOutputDir("plots", "sessions/squat-01.poselog")
	assert.Contains(t, dir, filepath.Join("plots", "squat-01"))

	live := MakePlotOutputDir("plots", "")
	assert.Contains(t, live, filepath.Join("plots", "live_"))

	// Awkward basenames are sanitized before becoming directory names.
	messy := MakePlotOutputDir("plots", "rec (morning session)!.poselog")
	assert.Contains(t, messy, filepath.Join("plots", "rec_morning_session"))
}

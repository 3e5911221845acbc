package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine"
	"github.com/formsense-data/form.report/internal/feedback"
	"github.com/formsense-data/form.report/internal/pose"
)

func writeTestLog(t *testing.T, frames []pose.Frame) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.poselog")
	lw, err := pose.NewLogWriter(path, pose.LogHeader{
		Version:      "1",
		ExerciseType: string(engine.ExerciseSquat),
		FrameRateHz:  30,
	})
	if err != nil {
		t.Fatalf("NewLogWriter: %v", err)
	}
	for _, f := range frames {
		if err := lw.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := lw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

// An interrupt mid-replay must still hand back the finalized summary so
// the partial session can be persisted.
func TestReplayCancelledReturnsPartialSummary(t *testing.T) {
	gen := pose.NewSyntheticGenerator(1)
	path := writeTestLog(t, gen.SquatReps(1, pose.SquatFlawNone))

	reader, err := pose.OpenLog(path)
	if err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	defer reader.Close()

	analyzer, err := engine.NewAnalyzer(engine.ExerciseSquat, nil)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	fb := feedback.NewManager(feedback.ManagerConfigFromTuning(config.MustLoadDefaultConfig(), feedback.NullSpeaker{}))
	if err := fb.Start(); err != nil {
		t.Fatalf("start feedback manager: %v", err)
	}
	defer fb.Dispose()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := replay(ctx, reader, analyzer, fb, nil, engine.ExerciseSquat)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("replay error = %v, want context.Canceled", err)
	}
	if summary == nil {
		t.Fatal("replay returned nil summary on cancellation")
	}
	if summary.SessionID == "" {
		t.Error("cancelled replay summary has no session id")
	}
	if summary.ExerciseType != engine.ExerciseSquat {
		t.Errorf("summary exercise = %s, want squat", summary.ExerciseType)
	}
}

func TestReplayCompletesWithoutCancellation(t *testing.T) {
	gen := pose.NewSyntheticGenerator(1)
	path := writeTestLog(t, gen.SquatReps(2, pose.SquatFlawNone))

	reader, err := pose.OpenLog(path)
	if err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	defer reader.Close()

	analyzer, err := engine.NewAnalyzer(engine.ExerciseSquat, nil)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	fb := feedback.NewManager(feedback.ManagerConfigFromTuning(config.MustLoadDefaultConfig(), feedback.NullSpeaker{}))
	if err := fb.Start(); err != nil {
		t.Fatalf("start feedback manager: %v", err)
	}
	defer fb.Dispose()

	summary, err := replay(context.Background(), reader, analyzer, fb, nil, engine.ExerciseSquat)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if summary.TotalReps != 2 {
		t.Errorf("TotalReps = %d, want 2", summary.TotalReps)
	}
}

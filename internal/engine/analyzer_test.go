package engine

import (
	"testing"

	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/pose"
)

func newTestAnalyzer(t *testing.T, exercise ExerciseType) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(exercise, config.MustLoadDefaultConfig())
	if err != nil {
		t.Fatalf("NewAnalyzer(%s): %v", exercise, err)
	}
	return a
}

func evaluateAll(a *Analyzer, frames []pose.Frame) []FrameEvaluationResult {
	results := make([]FrameEvaluationResult, 0, len(frames))
	for _, f := range frames {
		results = append(results, a.EvaluateFrame(f))
	}
	return results
}

func phasesSeen(results []FrameEvaluationResult) map[Phase]bool {
	seen := make(map[Phase]bool)
	for _, r := range results {
		seen[r.Phase] = true
	}
	return seen
}

func countCompleted(results []FrameEvaluationResult) int {
	n := 0
	for _, r := range results {
		if r.CompletedRep {
			n++
		}
	}
	return n
}

func hasIssue(r FrameEvaluationResult, issueType string) bool {
	for _, iss := range r.Issues {
		if iss.Type == issueType {
			return true
		}
	}
	return false
}

func TestSquatCleanRepsScoreClean(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseSquat)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.SquatReps(3, pose.SquatFlawNone))

	if got := a.RepCount(); got != 3 {
		t.Errorf("RepCount = %d, want 3", got)
	}
	if got := countCompleted(results); got != 3 {
		t.Errorf("completed-rep frames = %d, want 3", got)
	}
	seen := phasesSeen(results)
	for _, p := range []Phase{PhaseStart, PhaseDown, PhaseBottom, PhaseUp, PhaseTop} {
		if !seen[p] {
			t.Errorf("phase %s never reached", p)
		}
	}
	for i, r := range results {
		if r.Score != 100 {
			t.Fatalf("frame %d: score = %.2f with issues %v, want 100", i, r.Score, r.Issues)
		}
		if r.Level != LevelExcellent {
			t.Fatalf("frame %d: level = %s, want excellent", i, r.Level)
		}
	}
}

func TestSquatKneeForwardFlagged(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseSquat)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.SquatReps(2, pose.SquatFlawKneeForward))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}

	flagged := 0
	for _, r := range results {
		if r.Phase != PhaseDown || !hasIssue(r, IssueKneeOverToe) {
			continue
		}
		flagged++
		if r.Score >= 100 {
			t.Errorf("flagged frame score = %.2f, want < 100", r.Score)
		}
		for _, iss := range r.Issues {
			if iss.Type != IssueKneeOverToe {
				continue
			}
			if iss.Priority != PriorityHigh {
				t.Errorf("knee-over-toe priority = %s, want high", iss.Priority)
			}
			if iss.Deduction <= 0 {
				t.Errorf("knee-over-toe deduction = %.2f, want > 0", iss.Deduction)
			}
		}
	}
	if flagged == 0 {
		t.Error("no down-phase frame flagged knee over toe")
	}
}

// A shallow squat turns around above the bottom threshold, so the rep
// closes through the premature down→up reversal without ever entering the
// bottom phase, and the bottom-gated depth criterion stays silent.
func TestSquatShallowRepsBypassBottom(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseSquat)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.SquatReps(2, pose.SquatFlawShallow))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}
	if phasesSeen(results)[PhaseBottom] {
		t.Error("bottom phase reached on a shallow squat")
	}
	for i, r := range results {
		if hasIssue(r, IssueSquatDepth) {
			t.Fatalf("frame %d: depth issue raised outside bottom phase", i)
		}
	}
}

// A squat that pauses just above depth target reaches the bottom phase
// once the smoothed angle catches up, and is scored on its raw minimum.
func TestSquatDepthScoredAtBottom(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseSquat)
	gen := pose.NewSyntheticGenerator(1)

	var angles []float64
	for i := 0; i < 5; i++ {
		angles = append(angles, 172)
	}
	for v := 167.0; v >= 97; v -= 5 {
		angles = append(angles, v)
	}
	for i := 0; i < 12; i++ {
		angles = append(angles, 97)
	}
	for v := 102.0; v <= 172; v += 5 {
		angles = append(angles, v)
	}
	for i := 0; i < 10; i++ {
		angles = append(angles, 172)
	}

	var frames []pose.Frame
	for _, v := range angles {
		frames = append(frames, gen.SquatFrame(v, 0))
	}
	results := evaluateAll(a, frames)

	if got := a.RepCount(); got != 1 {
		t.Fatalf("RepCount = %d, want 1", got)
	}

	flagged := 0
	for _, r := range results {
		if r.Phase != PhaseBottom {
			continue
		}
		if !hasIssue(r, IssueSquatDepth) {
			t.Fatalf("bottom frame without depth issue, score %.2f", r.Score)
		}
		flagged++
		for _, iss := range r.Issues {
			if iss.Type != IssueSquatDepth {
				continue
			}
			if iss.Current < 96.9 || iss.Current > 97.1 {
				t.Errorf("depth issue current = %.2f, want ~97", iss.Current)
			}
			if iss.Priority != PriorityHigh {
				t.Errorf("depth priority = %s, want high", iss.Priority)
			}
		}
		// 2° shy of target: criterion 95, weighted deduction 2 points.
		if r.Score < 97.5 || r.Score > 98.5 {
			t.Errorf("bottom frame score = %.2f, want ~98", r.Score)
		}
	}
	if flagged == 0 {
		t.Fatal("bottom phase never reached")
	}
}

func TestLowVisibilityFrameLeavesStateUntouched(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseSquat)
	gen := pose.NewSyntheticGenerator(1)

	// Drive partway into a rep first.
	for _, v := range []float64{172, 172, 160, 145, 130} {
		a.EvaluateFrame(gen.SquatFrame(v, 0))
	}
	before := a.Phase()
	reps := a.RepCount()

	dim := pose.NewSyntheticGenerator(2)
	dim.Visibility = 0.2
	res := a.EvaluateFrame(dim.SquatFrame(100, 0))

	if res.Score != 100 {
		t.Errorf("score = %.2f, want 100 for an invisible frame", res.Score)
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues = %v, want none", res.Issues)
	}
	if res.Phase != before {
		t.Errorf("phase = %s, want unchanged %s", res.Phase, before)
	}
	if res.CompletedRep || a.RepCount() != reps {
		t.Error("invisible frame advanced the rep count")
	}
}

func TestAnalyzerResetReproducesScores(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseSquat)
	frames := pose.NewSyntheticGenerator(1).SquatReps(2, pose.SquatFlawKneeForward)

	first := evaluateAll(a, frames)
	a.Reset()
	if got := a.RepCount(); got != 0 {
		t.Fatalf("RepCount after Reset = %d, want 0", got)
	}
	if got := a.Phase(); got != PhaseStart {
		t.Fatalf("Phase after Reset = %s, want start", got)
	}
	second := evaluateAll(a, frames)

	for i := range first {
		if first[i].Score != second[i].Score {
			t.Fatalf("frame %d: score %.4f after Reset, %.4f before", i, second[i].Score, first[i].Score)
		}
		if first[i].Phase != second[i].Phase {
			t.Fatalf("frame %d: phase %s after Reset, %s before", i, second[i].Phase, first[i].Phase)
		}
	}
}

func TestBicepCurlCleanReps(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseBicepCurl)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.CurlReps(2, pose.CurlFlawNone))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}
	if !phasesSeen(results)[PhaseBottom] {
		t.Error("full curl never reached the bottom phase")
	}
	for i, r := range results {
		if r.Score != 100 {
			t.Fatalf("frame %d: score = %.2f with issues %v, want 100", i, r.Score, r.Issues)
		}
	}
}

func TestLateralRaiseCleanReps(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseLateralRaise)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.RaiseReps(2, pose.RaiseFlawNone))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}
	seen := phasesSeen(results)
	for _, p := range []Phase{PhaseStart, PhaseDown, PhaseBottom, PhaseUp, PhaseTop} {
		if !seen[p] {
			t.Errorf("phase %s never reached", p)
		}
	}
	for i, r := range results {
		if r.Score != 100 {
			t.Fatalf("frame %d: score = %.2f with issues %v, want 100", i, r.Score, r.Issues)
		}
	}
}

func TestLateralRaiseSwayFlagged(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseLateralRaise)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.RaiseReps(2, pose.RaiseFlawSway))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}

	moving := map[Phase]bool{PhaseDown: true, PhaseBottom: true, PhaseUp: true}
	flagged := 0
	for _, r := range results {
		if !moving[r.Phase] || !hasIssue(r, IssueTorsoSway) {
			continue
		}
		flagged++
		if r.Score >= 100 {
			t.Errorf("flagged frame score = %.2f, want < 100", r.Score)
		}
		for _, iss := range r.Issues {
			if iss.Type != IssueTorsoSway {
				continue
			}
			if iss.Priority != PriorityHigh {
				t.Errorf("torso-sway priority = %s, want high", iss.Priority)
			}
			if iss.Deduction <= 0 {
				t.Errorf("torso-sway deduction = %.2f, want > 0", iss.Deduction)
			}
		}
	}
	if flagged == 0 {
		t.Error("no moving-phase frame flagged torso sway")
	}
}

func TestShoulderPressCleanReps(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseShoulderPress)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.PressReps(2, pose.PressFlawNone))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}
	seen := phasesSeen(results)
	for _, p := range []Phase{PhaseStart, PhaseDown, PhaseBottom, PhaseUp, PhaseTop} {
		if !seen[p] {
			t.Errorf("phase %s never reached", p)
		}
	}
	for i, r := range results {
		if r.Score != 100 {
			t.Fatalf("frame %d: score = %.2f with issues %v, want 100", i, r.Score, r.Issues)
		}
	}
}

func TestShoulderPressBackArchFlagged(t *testing.T) {
	a := newTestAnalyzer(t, ExerciseShoulderPress)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.PressReps(2, pose.PressFlawArch))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}

	moving := map[Phase]bool{PhaseDown: true, PhaseBottom: true, PhaseUp: true}
	flagged := 0
	for _, r := range results {
		if !moving[r.Phase] || !hasIssue(r, IssueBackArch) {
			continue
		}
		flagged++
		if r.Score >= 100 {
			t.Errorf("flagged frame score = %.2f, want < 100", r.Score)
		}
		// The whole girdle leans together, so the arch must not bleed
		// into the press-path or balance criteria.
		if hasIssue(r, IssuePressPath) || hasIssue(r, IssueWristBalance) {
			t.Errorf("lean flagged unrelated issues: %v", r.Issues)
		}
		for _, iss := range r.Issues {
			if iss.Type == IssueBackArch && iss.Priority != PriorityHigh {
				t.Errorf("back-arch priority = %s, want high", iss.Priority)
			}
		}
	}
	if flagged == 0 {
		t.Error("no moving-phase frame flagged back arch")
	}
}

func TestPushUpCleanReps(t *testing.T) {
	a := newTestAnalyzer(t, ExercisePushUp)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.PushUpReps(2, pose.PushUpFlawNone))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}
	seen := phasesSeen(results)
	for _, p := range []Phase{PhaseStart, PhaseDown, PhaseBottom, PhaseUp, PhaseTop} {
		if !seen[p] {
			t.Errorf("phase %s never reached", p)
		}
	}
	for i, r := range results {
		if r.Score != 100 {
			t.Fatalf("frame %d: score = %.2f with issues %v, want 100", i, r.Score, r.Issues)
		}
	}
}

func TestPushUpHipSagFlagged(t *testing.T) {
	a := newTestAnalyzer(t, ExercisePushUp)
	gen := pose.NewSyntheticGenerator(1)

	results := evaluateAll(a, gen.PushUpReps(2, pose.PushUpFlawSag))

	if got := a.RepCount(); got != 2 {
		t.Errorf("RepCount = %d, want 2", got)
	}

	flagged := 0
	for _, r := range results {
		if !hasIssue(r, IssueHipSag) {
			continue
		}
		flagged++
		if r.Score >= 100 {
			t.Errorf("flagged frame score = %.2f, want < 100", r.Score)
		}
		if hasIssue(r, IssueHipPike) {
			t.Error("sagging hips also flagged as piking")
		}
		for _, iss := range r.Issues {
			if iss.Type != IssueHipSag {
				continue
			}
			if iss.Priority != PriorityHigh {
				t.Errorf("hip-sag priority = %s, want high", iss.Priority)
			}
			if iss.Current <= 0 {
				t.Errorf("hip-sag deviation = %.4f, want > 0", iss.Current)
			}
		}
	}
	if flagged == 0 {
		t.Error("no frame flagged sagging hips")
	}
}

func TestNewAnalyzerUnknownType(t *testing.T) {
	if _, err := NewAnalyzer(ExerciseType("deadlift"), nil); err == nil {
		t.Error("expected error for unknown exercise type")
	}
}

func TestNewAnalyzerNilConfigUsesDefaults(t *testing.T) {
	a, err := NewAnalyzer(ExerciseSquat, nil)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	if got := a.MinVisibility(); got != 0.5 {
		t.Errorf("MinVisibility = %v, want fallback 0.5", got)
	}
	if a.Type() != ExerciseSquat {
		t.Errorf("Type = %s, want squat", a.Type())
	}
}

func TestInfoCoversAllTypes(t *testing.T) {
	for _, et := range AllExerciseTypes {
		info, err := Info(et)
		if err != nil {
			t.Errorf("Info(%s): %v", et, err)
			continue
		}
		if info.Type != et || info.DisplayName == "" || len(info.KeyBodyParts) == 0 {
			t.Errorf("Info(%s) incomplete: %+v", et, info)
		}
	}
	if _, err := Info(ExerciseType("yoga")); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestParseExerciseType(t *testing.T) {
	if et, err := ParseExerciseType("squat"); err != nil || et != ExerciseSquat {
		t.Errorf("ParseExerciseType(squat) = %v, %v", et, err)
	}
	if _, err := ParseExerciseType("jumping_jack"); err == nil {
		t.Error("expected error for unknown name")
	}
}

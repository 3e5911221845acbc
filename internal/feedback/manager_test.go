package feedback

import (
	"testing"
	"time"

	"github.com/formsense-data/form.report/internal/engine"
	"github.com/formsense-data/form.report/internal/timeutil"
)

// newTestManager builds a started manager on a mock clock. The drain
// interval is set far beyond any Advance in these tests so delivery is
// driven exclusively by explicit Tick calls.
func newTestManager(t *testing.T) (*Manager, *timeutil.MockClock, *MockSpeaker) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	speaker := NewMockSpeaker()
	m := NewManager(ManagerConfig{
		Speaker:       speaker,
		Clock:         clock,
		VoiceEnabled:  true,
		VisualEnabled: true,
		MinPriority:   engine.PriorityMedium,
		QueueSize:     8,
		MinGap:        3 * time.Second,
		RepeatGap:     10 * time.Second,
		DrainInterval: time.Hour,
		SpeechRate:    1.0,
		SpeechVolume:  1.0,
	})
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Dispose)
	return m, clock, speaker
}

func resultWithIssues(issues ...engine.FormIssue) engine.FrameEvaluationResult {
	return engine.FrameEvaluationResult{Score: 80, Issues: issues}
}

func highIssue(issueType, message, suggestion string) engine.FormIssue {
	return engine.FormIssue{
		Type:       issueType,
		Message:    message,
		Priority:   engine.PriorityHigh,
		Suggestion: suggestion,
	}
}

func TestManagerSpeaksWithDisclaimer(t *testing.T) {
	m, _, speaker := newTestManager(t)

	m.OfferResult(resultWithIssues(highIssue("trunk_lean", "Torso is leaning too far forward", "Keep your chest up")))
	m.Tick()

	texts := speaker.Texts()
	if len(texts) != 1 {
		t.Fatalf("utterances = %d, want 1", len(texts))
	}
	want := Disclaimer + "Torso is leaning too far forward. Keep your chest up"
	if texts[0] != want {
		t.Errorf("spoken text = %q, want %q", texts[0], want)
	}
}

func TestManagerMinGapBetweenUtterances(t *testing.T) {
	m, clock, speaker := newTestManager(t)

	m.OfferResult(resultWithIssues(
		highIssue("a", "first", ""),
		highIssue("b", "second", ""),
	))

	m.Tick()
	m.Tick() // still inside the minimum gap
	if got := len(speaker.Texts()); got != 1 {
		t.Fatalf("utterances = %d, want 1 before the gap elapses", got)
	}

	clock.Advance(3 * time.Second)
	m.Tick()
	if got := len(speaker.Texts()); got != 2 {
		t.Errorf("utterances = %d, want 2 after the gap elapses", got)
	}
}

func TestManagerRepeatWindowSuppressesSameType(t *testing.T) {
	m, clock, speaker := newTestManager(t)

	iss := highIssue("heel_lift", "Heel is lifting off the floor", "")
	m.OfferResult(resultWithIssues(iss))
	m.Tick()
	if got := len(speaker.Texts()); got != 1 {
		t.Fatalf("utterances = %d, want 1", got)
	}

	// Past the minimum gap but inside the per-type repeat window: the
	// issue is not even queued again.
	clock.Advance(4 * time.Second)
	m.OfferResult(resultWithIssues(iss))
	if got := m.QueueLen(); got != 0 {
		t.Fatalf("QueueLen = %d, want 0 inside the repeat window", got)
	}

	clock.Advance(7 * time.Second) // 11s since the utterance
	m.OfferResult(resultWithIssues(iss))
	m.Tick()
	if got := len(speaker.Texts()); got != 2 {
		t.Errorf("utterances = %d, want 2 after the repeat window", got)
	}
}

func TestManagerMinPriorityFilter(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.OfferResult(resultWithIssues(engine.FormIssue{Type: "minor", Priority: engine.PriorityLow}))
	if got := m.QueueLen(); got != 0 {
		t.Errorf("QueueLen = %d, want 0 for a below-threshold issue", got)
	}

	m.OfferResult(resultWithIssues(engine.FormIssue{Type: "asymmetry", Priority: engine.PriorityMedium}))
	if got := m.QueueLen(); got != 1 {
		t.Errorf("QueueLen = %d, want 1 for a medium issue", got)
	}
}

func TestManagerDoesNotQueueDuplicateType(t *testing.T) {
	m, _, _ := newTestManager(t)

	iss := highIssue("knee_over_toe", "Knee is travelling past the toes", "")
	m.OfferResult(resultWithIssues(iss))
	m.OfferResult(resultWithIssues(iss))
	if got := m.QueueLen(); got != 1 {
		t.Errorf("QueueLen = %d, want 1 after offering the same type twice", got)
	}
}

func TestManagerRepCompletionMessage(t *testing.T) {
	m, _, speaker := newTestManager(t)

	// Low priority, but rep completions bypass the priority gate.
	m.OfferResult(engine.FrameEvaluationResult{
		Score:        95,
		CompletedRep: true,
		RepCount:     1,
	})
	m.Tick()

	texts := speaker.Texts()
	if len(texts) != 1 {
		t.Fatalf("utterances = %d, want 1", len(texts))
	}
	want := Disclaimer + "First rep done, excellent form"
	if texts[0] != want {
		t.Errorf("spoken text = %q, want %q", texts[0], want)
	}
}

func TestManagerRepMessageWording(t *testing.T) {
	cases := []struct {
		rep   int
		score float64
		want  string
	}{
		{1, 95, "First rep done, excellent form"},
		{3, 75, "Rep 3 done, good form"},
		{4, 40, "Rep 4 done, keep focusing on your form"},
	}
	for _, tc := range cases {
		if got := repMessage(tc.rep, tc.score); got != tc.want {
			t.Errorf("repMessage(%d, %.0f) = %q, want %q", tc.rep, tc.score, got, tc.want)
		}
	}
}

func TestManagerVisualSnapshotAlwaysUpdates(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	m := NewManager(ManagerConfig{
		Speaker:       NewMockSpeaker(),
		Clock:         clock,
		VoiceEnabled:  false,
		VisualEnabled: true,
		QueueSize:     8,
		DrainInterval: time.Hour,
	})

	iss := highIssue("trunk_lean", "lean", "")
	m.OfferResult(resultWithIssues(iss))

	got := m.CurrentIssues()
	if len(got) != 1 || got[0].Type != "trunk_lean" {
		t.Fatalf("CurrentIssues = %v, want the offered issue", got)
	}
	if m.QueueLen() != 0 {
		t.Error("voice-disabled manager queued an utterance")
	}

	// A clean frame replaces the snapshot.
	m.OfferResult(engine.FrameEvaluationResult{Score: 100})
	if got := m.CurrentIssues(); len(got) != 0 {
		t.Errorf("CurrentIssues after clean frame = %v, want empty", got)
	}
}

func TestManagerStopClearsState(t *testing.T) {
	m, _, speaker := newTestManager(t)

	m.OfferResult(resultWithIssues(highIssue("a", "msg", "")))
	m.Stop()

	if m.IsRunning() {
		t.Error("IsRunning after Stop")
	}
	if got := m.QueueLen(); got != 0 {
		t.Errorf("QueueLen after Stop = %d, want 0", got)
	}
	if speaker.StopCalls() == 0 {
		t.Error("speaker.Stop never called")
	}

	// Ticks on a stopped manager are no-ops.
	m.Tick()
	if got := len(speaker.Texts()); got != 0 {
		t.Errorf("utterances after Stop = %d, want 0", got)
	}
}

func TestManagerIdleUntilStarted(t *testing.T) {
	m := NewManager(ManagerConfig{
		Speaker:       NewMockSpeaker(),
		Clock:         timeutil.NewMockClock(time.Now()),
		VoiceEnabled:  true,
		VisualEnabled: true,
		QueueSize:     8,
		DrainInterval: time.Hour,
	})

	m.OfferResult(resultWithIssues(highIssue("a", "msg", "")))
	if got := m.QueueLen(); got != 0 {
		t.Errorf("QueueLen before Start = %d, want 0", got)
	}
	// The visual snapshot still updates.
	if got := m.CurrentIssues(); len(got) != 1 {
		t.Errorf("CurrentIssues before Start = %v, want the offered issue", got)
	}
}

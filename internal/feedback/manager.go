package feedback

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine"
	"github.com/formsense-data/form.report/internal/timeutil"
)

// Disclaimer is prefixed to every voiced message. Compliance requirement:
// all spoken feedback is advisory reference material, not a diagnosis.
const Disclaimer = "General form guidance: "

// repCompleteType is the synthetic issue type used for rep-completion
// coaching messages.
const repCompleteType = "rep_complete"

// ManagerConfig configures a feedback Manager.
type ManagerConfig struct {
	// Speaker is the audio output. Required; use NullSpeaker to discard.
	Speaker Speaker
	// Clock drives the drain ticker and throttle windows. Defaults to the
	// real clock.
	Clock timeutil.Clock
	// Logger is optional; if nil, uses log.Default().
	Logger *log.Logger

	VoiceEnabled  bool
	VisualEnabled bool
	// MinPriority is the lowest priority voiced. Rep-completion messages
	// bypass this gate (they are the only low-priority content queued).
	MinPriority   engine.IssuePriority
	QueueSize     int
	MinGap        time.Duration // minimum gap between any two utterances
	RepeatGap     time.Duration // window in which one issue type is voiced at most once
	DrainInterval time.Duration
	SpeechRate    float64
	SpeechVolume  float64
}

// ManagerConfigFromTuning builds a ManagerConfig from the tuning file's
// feedback policy section.
func ManagerConfigFromTuning(cfg *config.TuningConfig, speaker Speaker) ManagerConfig {
	return ManagerConfig{
		Speaker:       speaker,
		VoiceEnabled:  cfg.GetVoiceEnabled(),
		VisualEnabled: cfg.GetVisualEnabled(),
		MinPriority:   engine.ParsePriority(cfg.GetVoiceMinPriority()),
		QueueSize:     cfg.GetVoiceQueueSize(),
		MinGap:        cfg.GetVoiceMinGap(),
		RepeatGap:     cfg.GetVoiceRepeatGap(),
		DrainInterval: cfg.GetDrainInterval(),
		SpeechRate:    cfg.GetSpeechRate(),
		SpeechVolume:  cfg.GetSpeechVolume(),
	}
}

// Manager decouples issue detection (~30 frames/second) from user-facing
// delivery. The frame loop is the single producer; the drain tick is the
// single consumer; they share only the bounded queue and the visual issue
// snapshot, both guarded by one mutex held briefly on either side.
type Manager struct {
	cfg     ManagerConfig
	speaker Speaker
	clock   timeutil.Clock
	logger  *log.Logger

	mu            sync.Mutex
	running       bool
	queue         *queue
	lastVoicedAt  map[string]time.Time // issue type → last utterance time
	lastSpokenAt  time.Time
	spokeAnything bool
	currentIssues []engine.FormIssue

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewManager creates a Manager; call Start to begin voice delivery.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Speaker == nil {
		cfg.Speaker = NullSpeaker{}
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 8
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = 500 * time.Millisecond
	}
	return &Manager{
		cfg:          cfg,
		speaker:      cfg.Speaker,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		queue:        newQueue(cfg.QueueSize),
		lastVoicedAt: make(map[string]time.Time),
	}
}

// Start initialises the speaker and launches the drain loop. Safe to call
// once per idle period; calling on a running manager is a no-op.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	if err := m.speaker.Initialize(); err != nil {
		m.logger.Printf("feedback: speaker initialize failed, voice disabled: %v", err)
	} else {
		if err := m.speaker.SetRate(m.cfg.SpeechRate); err != nil {
			m.logger.Printf("feedback: set rate: %v", err)
		}
		if err := m.speaker.SetVolume(m.cfg.SpeechVolume); err != nil {
			m.logger.Printf("feedback: set volume: %v", err)
		}
	}

	go m.drainLoop()
	return nil
}

// drainLoop runs until Stop, servicing the queue on each tick.
func (m *Manager) drainLoop() {
	defer close(m.doneCh)
	ticker := m.clock.NewTicker(m.cfg.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C():
			m.Tick()
		}
	}
}

// Stop cancels the drain loop, stops any in-flight speech, and clears all
// queued and per-rep state synchronously. A restarted session begins
// clean. Safe to call multiple times.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	<-done

	if err := m.speaker.Stop(); err != nil {
		m.logger.Printf("feedback: speaker stop: %v", err)
	}

	m.mu.Lock()
	m.queue.Clear()
	m.lastVoicedAt = make(map[string]time.Time)
	m.currentIssues = nil
	m.spokeAnything = false
	m.mu.Unlock()
}

// Dispose stops the manager and releases the speaker.
func (m *Manager) Dispose() {
	m.Stop()
	if err := m.speaker.Dispose(); err != nil {
		m.logger.Printf("feedback: speaker dispose: %v", err)
	}
}

// IsRunning reports whether the drain loop is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// OfferResult feeds one frame result into the manager. The visual snapshot
// is updated unconditionally every frame; qualifying issues are enqueued
// for voice delivery; a completed rep queues a low-priority coaching
// message. Called from the frame loop; never blocks on audio.
func (m *Manager) OfferResult(result engine.FrameEvaluationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.VisualEnabled {
		m.currentIssues = append(m.currentIssues[:0], result.Issues...)
	}

	if !m.running || !m.cfg.VoiceEnabled {
		return
	}

	now := m.clock.Now()
	for _, issue := range result.Issues {
		if issue.Priority.Rank() < m.cfg.MinPriority.Rank() {
			continue
		}
		if m.recentlyVoicedLocked(issue.Type, now) {
			continue
		}
		if m.queue.ContainsType(issue.Type) {
			continue
		}
		m.queue.Push(Item{Issue: issue, EnqueuedAt: now})
	}

	if result.CompletedRep && !m.recentlyVoicedLocked(repCompleteType, now) && !m.queue.ContainsType(repCompleteType) {
		m.queue.Push(Item{
			Issue: engine.FormIssue{
				Type:     repCompleteType,
				Message:  repMessage(result.RepCount, result.Score),
				Priority: engine.PriorityLow,
			},
			EnqueuedAt: now,
		})
	}
}

// CurrentIssues returns a copy of the latest frame's issue list for
// visual rendering.
func (m *Manager) CurrentIssues() []engine.FormIssue {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]engine.FormIssue, len(m.currentIssues))
	copy(out, m.currentIssues)
	return out
}

// QueueLen returns the number of items awaiting voice delivery.
func (m *Manager) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// Tick services the queue once: if the minimum gap since the last
// utterance has passed, the highest-priority pending item is spoken.
// Exported so tests (and the mock ticker) can drive delivery directly.
func (m *Manager) Tick() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	now := m.clock.Now()
	if m.spokeAnything && now.Sub(m.lastSpokenAt) < m.cfg.MinGap {
		m.mu.Unlock()
		return
	}

	var item Item
	var ok bool
	for {
		item, ok = m.queue.PopHighest()
		if !ok {
			m.mu.Unlock()
			return
		}
		// Re-check the repeat window at delivery time; the item may have
		// queued just before a same-type utterance.
		if !m.recentlyVoicedLocked(item.Issue.Type, now) {
			break
		}
	}
	m.lastVoicedAt[item.Issue.Type] = now
	m.lastSpokenAt = now
	m.spokeAnything = true
	m.mu.Unlock()

	text := Disclaimer + item.Issue.Message
	if item.Issue.Suggestion != "" {
		text += ". " + item.Issue.Suggestion
	}

	// Speak outside the lock: audio dispatch may block and must never
	// stall the frame loop.
	if !m.speaker.IsAvailable() {
		m.logger.Printf("feedback: speaker unavailable, dropping %q", item.Issue.Type)
		return
	}
	if err := m.speaker.Speak(text); err != nil {
		m.logger.Printf("feedback: speak failed for %q: %v", item.Issue.Type, err)
	}
}

func (m *Manager) recentlyVoicedLocked(issueType string, now time.Time) bool {
	last, ok := m.lastVoicedAt[issueType]
	return ok && now.Sub(last) < m.cfg.RepeatGap
}

func repMessage(repCount int, score float64) string {
	switch {
	case score >= engine.ScoreExcellentMin:
		return repPhrase(repCount, "excellent form")
	case score >= engine.ScoreGoodMin:
		return repPhrase(repCount, "good form")
	default:
		return repPhrase(repCount, "keep focusing on your form")
	}
}

func repPhrase(repCount int, note string) string {
	if repCount == 1 {
		return "First rep done, " + note
	}
	return "Rep " + strconv.Itoa(repCount) + " done, " + note
}

package feedback

import (
	"sync"
	"time"
)

// Utterance records one Speak call made against a MockSpeaker.
type Utterance struct {
	Text     string
	SpokenAt time.Time
}

// MockSpeaker implements Speaker for testing. It records every call and
// can be configured to fail on demand.
type MockSpeaker struct {
	mu         sync.Mutex
	utterances []Utterance
	rate       float64
	volume     float64
	available  bool
	initCalls  int
	stopCalls  int
	disposed   bool

	// SpeakErr, when set, is returned by every Speak call.
	SpeakErr error
}

// NewMockSpeaker creates an available MockSpeaker.
func NewMockSpeaker() *MockSpeaker {
	return &MockSpeaker{available: true, rate: 1.0, volume: 1.0}
}

func (m *MockSpeaker) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	return nil
}

func (m *MockSpeaker) Speak(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SpeakErr != nil {
		return m.SpeakErr
	}
	m.utterances = append(m.utterances, Utterance{Text: text, SpokenAt: time.Now()})
	return nil
}

func (m *MockSpeaker) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	return nil
}

func (m *MockSpeaker) SetRate(rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
	return nil
}

func (m *MockSpeaker) SetVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
	return nil
}

func (m *MockSpeaker) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available && !m.disposed
}

func (m *MockSpeaker) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	return nil
}

// Utterances returns a copy of every recorded Speak call.
func (m *MockSpeaker) Utterances() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Utterance, len(m.utterances))
	copy(out, m.utterances)
	return out
}

// Texts returns just the spoken strings, in order.
func (m *MockSpeaker) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.utterances))
	for i, u := range m.utterances {
		out[i] = u.Text
	}
	return out
}

// Rate returns the last configured speech rate.
func (m *MockSpeaker) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// Volume returns the last configured speech volume.
func (m *MockSpeaker) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// StopCalls returns how many times Stop was called.
func (m *MockSpeaker) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

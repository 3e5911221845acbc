// Package feedback turns per-frame evaluation results into user-facing
// coaching: an unconditional per-frame visual issue snapshot, and a
// throttled, priority-ordered voice channel driven by a periodic drain
// tick. The package depends only on the abstract Speaker contract; any
// conforming audio implementation can be injected.
package feedback

// Speaker is the abstract audio-output contract consumed by the Manager.
// Speak is the only operation that may block; all errors are handled at
// the Manager boundary.
type Speaker interface {
	Initialize() error
	Speak(text string) error
	Stop() error
	SetRate(rate float64) error
	SetVolume(volume float64) error
	IsAvailable() bool
	Dispose() error
}

// NullSpeaker is a Speaker that discards everything. Useful when voice
// output is disabled but the Manager lifecycle still runs.
type NullSpeaker struct{}

func (NullSpeaker) Initialize() error       { return nil }
func (NullSpeaker) Speak(string) error      { return nil }
func (NullSpeaker) Stop() error             { return nil }
func (NullSpeaker) SetRate(float64) error   { return nil }
func (NullSpeaker) SetVolume(float64) error { return nil }
func (NullSpeaker) IsAvailable() bool       { return true }
func (NullSpeaker) Dispose() error          { return nil }

// Package signal provides the per-signal conditioners used by the form
// analyzers: a keyed exponential moving average and a keyed finite-difference
// velocity estimator. Both hold one state slot per signal name and are reset
// together with the owning analyzer's phase state.
package signal

// Smoother applies an exponential moving average independently per signal
// key. The first sample for a key passes through unchanged.
type Smoother struct {
	alpha  float64
	values map[string]float64
}

// DefaultSmoothingAlpha is the EMA weight applied to the newest sample.
const DefaultSmoothingAlpha = 0.3

// NewSmoother creates a Smoother with the given EMA alpha in (0,1].
// Out-of-range alphas fall back to DefaultSmoothingAlpha.
func NewSmoother(alpha float64) *Smoother {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothingAlpha
	}
	return &Smoother{
		alpha:  alpha,
		values: make(map[string]float64),
	}
}

// Smooth folds value into the moving average for key and returns the new
// average. Calling with the same key advances that key's state only.
func (s *Smoother) Smooth(key string, value float64) float64 {
	prev, ok := s.values[key]
	if !ok {
		s.values[key] = value
		return value
	}
	next := s.alpha*value + (1-s.alpha)*prev
	s.values[key] = next
	return next
}

// Value returns the current average for key without advancing it.
func (s *Smoother) Value(key string) (float64, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Reset discards all per-key state.
func (s *Smoother) Reset() {
	s.values = make(map[string]float64)
}

// VelocityEstimator computes a finite-difference velocity per signal key,
// in units of the signal per second (degrees/second for joint angles).
type VelocityEstimator struct {
	samples map[string]velocitySample
}

type velocitySample struct {
	value float64
	tsMs  int64
}

// NewVelocityEstimator creates an empty estimator.
func NewVelocityEstimator() *VelocityEstimator {
	return &VelocityEstimator{samples: make(map[string]velocitySample)}
}

// Velocity returns (value − previous) / Δt for key. The second return is
// false on the first sample for a key and whenever Δt is non-positive
// (out-of-order or duplicate timestamps), so callers never divide by zero.
// The stored sample is only advanced when the timestamp moves forward.
func (e *VelocityEstimator) Velocity(key string, value float64, tsMs int64) (float64, bool) {
	prev, ok := e.samples[key]
	if !ok {
		e.samples[key] = velocitySample{value: value, tsMs: tsMs}
		return 0, false
	}
	dtMs := tsMs - prev.tsMs
	if dtMs <= 0 {
		return 0, false
	}
	e.samples[key] = velocitySample{value: value, tsMs: tsMs}
	return (value - prev.value) / (float64(dtMs) / 1000.0), true
}

// Reset discards all per-key state.
func (e *VelocityEstimator) Reset() {
	e.samples = make(map[string]velocitySample)
}

package engine

// Phase represents one state in the repetition-cycle state machine.
type Phase string

const (
	PhaseStart  Phase = "start"  // No rep in progress yet
	PhaseDown   Phase = "down"   // Moving toward the turnaround extreme
	PhaseBottom Phase = "bottom" // At the turnaround extreme
	PhaseUp     Phase = "up"     // Returning toward the rest position
	PhaseTop    Phase = "top"    // Back at the rest position, rep complete
)

// PhaseThresholds holds the three primary-angle thresholds that drive one
// exercise's state machine, in degrees of the smoothed primary angle.
// For a squat (angle shrinking into the bottom): DownEnter=150,
// BottomEnter=100, TopEnter=160. Inverted exercises (angle growing toward
// the turnaround, e.g. a lateral raise) mirror every comparison.
type PhaseThresholds struct {
	DownEnterDeg   float64 // crossing this starts the down phase
	BottomEnterDeg float64 // crossing this enters the bottom phase
	TopEnterDeg    float64 // re-crossing this completes the rep
}

// phaseMachine is the five-state rep cycle shared by every analyzer.
// Transitions require both a threshold crossing and an agreeing velocity
// sign, so a plateauing but non-crossing signal does not flip phase. A
// minimum dwell (in frames) damps jitter-induced flips; this is the chosen
// policy for ambiguous partial reps — a reversal is accepted between
// up/down once the dwell is satisfied, without forcing a full cycle.
type phaseMachine struct {
	thresholds PhaseThresholds
	inverted   bool // true when the angle increases toward the turnaround
	minDwell   int

	phase       Phase
	phaseFrames int
}

func newPhaseMachine(t PhaseThresholds, inverted bool, minDwell int) *phaseMachine {
	return &phaseMachine{
		thresholds: t,
		inverted:   inverted,
		minDwell:   minDwell,
		phase:      PhaseStart,
	}
}

// descending normalises the two movement directions: it reports whether the
// angle is moving toward the turnaround extreme.
func (pm *phaseMachine) descending(velocity float64) bool {
	if pm.inverted {
		return velocity > 0
	}
	return velocity < 0
}

// below reports whether the angle has crossed th in the "toward bottom"
// direction; above is the mirror.
func (pm *phaseMachine) below(angle, th float64) bool {
	if pm.inverted {
		return angle > th
	}
	return angle < th
}

func (pm *phaseMachine) above(angle, th float64) bool {
	if pm.inverted {
		return angle < th
	}
	return angle > th
}

// Step advances the machine with the smoothed primary angle and its
// velocity (deg/s). velocityOK is false when no velocity estimate exists
// yet; transitions that require a velocity sign are then suppressed.
// Returns the new phase and whether a rep completed on this step.
func (pm *phaseMachine) Step(angle, velocity float64, velocityOK bool) (Phase, bool) {
	pm.phaseFrames++
	if pm.phase != PhaseStart && pm.phaseFrames <= pm.minDwell {
		return pm.phase, false
	}

	next := pm.phase
	completed := false

	switch pm.phase {
	case PhaseStart, PhaseTop:
		if pm.below(angle, pm.thresholds.DownEnterDeg) && velocityOK && pm.descending(velocity) {
			next = PhaseDown
		}
	case PhaseDown:
		if pm.below(angle, pm.thresholds.BottomEnterDeg) {
			next = PhaseBottom
		} else if velocityOK && !pm.descending(velocity) && pm.above(angle, pm.thresholds.DownEnterDeg) {
			// Premature reversal: partial rep heading back up.
			next = PhaseUp
		}
	case PhaseBottom:
		if pm.above(angle, pm.thresholds.BottomEnterDeg) && velocityOK && !pm.descending(velocity) {
			next = PhaseUp
		}
	case PhaseUp:
		if pm.above(angle, pm.thresholds.TopEnterDeg) {
			next = PhaseTop
			completed = true
		} else if pm.below(angle, pm.thresholds.BottomEnterDeg) {
			// Reversed back into the bottom without finishing.
			next = PhaseBottom
		} else if velocityOK && pm.descending(velocity) && pm.below(angle, pm.thresholds.DownEnterDeg) {
			// Premature reversal: heading back down mid-ascent.
			next = PhaseDown
		}
	}

	if next != pm.phase {
		pm.phase = next
		pm.phaseFrames = 0
	}
	return pm.phase, completed
}

// Phase returns the current phase without advancing the machine.
func (pm *phaseMachine) Phase() Phase { return pm.phase }

// Reset returns the machine to the start state.
func (pm *phaseMachine) Reset() {
	pm.phase = PhaseStart
	pm.phaseFrames = 0
}

// Package engine implements the real-time exercise-form evaluation core:
// joint-angle geometry over pose landmarks, per-signal smoothing and
// velocity estimation, a five-state repetition phase machine, and weighted
// multi-criterion scoring for each supported exercise.
//
// One Analyzer instance is scoped to one exercise session. Frame evaluation
// is synchronous and performs no I/O; the only cross-frame state is the
// phase machine, the filter buffers, the per-rep angle extremes, and the
// reference positions captured on first sight.
package engine

import (
	"sort"

	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine/geom"
	"github.com/formsense-data/form.report/internal/engine/signal"
	"github.com/formsense-data/form.report/internal/pose"
)

// ExerciseType identifies one supported exercise.
type ExerciseType string

const (
	ExerciseSquat         ExerciseType = "squat"
	ExerciseBicepCurl     ExerciseType = "bicep_curl"
	ExerciseLateralRaise  ExerciseType = "lateral_raise"
	ExerciseShoulderPress ExerciseType = "shoulder_press"
	ExercisePushUp        ExerciseType = "push_up"
)

// AllExerciseTypes lists the supported exercises in display order.
var AllExerciseTypes = []ExerciseType{
	ExerciseSquat,
	ExerciseBicepCurl,
	ExerciseLateralRaise,
	ExerciseShoulderPress,
	ExercisePushUp,
}

// FrameContext carries the per-frame inputs a criterion evaluates against.
type FrameContext struct {
	Frame      pose.Frame
	Phase      Phase
	Primary    float64 // smoothed primary angle, degrees
	Velocity   float64 // primary angle velocity, deg/s
	VelocityOK bool

	// Angles holds every joint angle computed so far this frame; criteria
	// may read and extend it.
	Angles map[string]float64

	A *Analyzer
}

// Criterion is one weighted, independently scored form rule. Eval returns a
// score in [0,100] plus an optional issue; it must return (100, nil) — a
// silent pass — whenever its required landmarks are below the visibility
// threshold. Criteria listing Phases are only evaluated in those phases and
// score 100 silently elsewhere.
type Criterion struct {
	Name   string
	Weight float64 // fraction of the 100-point budget, e.g. 0.40
	Phases []Phase // empty = evaluated in every phase
	Eval   func(fc *FrameContext) (float64, *FormIssue)
}

// exerciseSpec is the closed per-exercise variant: phase thresholds,
// primary-angle computation, reference capture, and the criteria list. The
// base Analyzer supplies the algorithm skeleton; specs supply only
// configuration and scoring.
type exerciseSpec struct {
	Type       ExerciseType
	Thresholds PhaseThresholds
	// Inverted is true when the primary angle increases toward the
	// turnaround extreme (lateral raise, shoulder press).
	Inverted bool

	// Primary computes the raw primary angle for the frame, filling any
	// side angles into angles. ok is false when the required landmarks are
	// not sufficiently visible; the frame is then skipped without error.
	Primary func(a *Analyzer, f pose.Frame, angles map[string]float64) (float64, bool)

	// CaptureRefs records reference positions (initial elbow X, shoulder Y,
	// ...) for landmarks seen for the first time. Called every frame,
	// independent of phase gating.
	CaptureRefs func(a *Analyzer, f pose.Frame)

	Criteria []Criterion
}

// Analyzer is the form-evaluation engine for one exercise session.
type Analyzer struct {
	spec exerciseSpec
	cfg  *config.TuningConfig

	minVisibility float64
	smoother      *signal.Smoother
	velocity      *signal.VelocityEstimator
	machine       *phaseMachine

	refs map[string]float64

	repMin   float64
	repMax   float64
	repSeen  bool
	repCount int
}

func newAnalyzer(spec exerciseSpec, cfg *config.TuningConfig) *Analyzer {
	return &Analyzer{
		spec:          spec,
		cfg:           cfg,
		minVisibility: cfg.GetMinVisibility(),
		smoother:      signal.NewSmoother(cfg.GetSmoothingAlpha()),
		velocity:      signal.NewVelocityEstimator(),
		machine:       newPhaseMachine(spec.Thresholds, spec.Inverted, cfg.GetPhaseMinDwellFrames()),
		refs:          make(map[string]float64),
	}
}

// Type returns the exercise this analyzer scores.
func (a *Analyzer) Type() ExerciseType { return a.spec.Type }

// Phase returns the current repetition phase.
func (a *Analyzer) Phase() Phase { return a.machine.Phase() }

// RepCount returns the number of completed reps this session.
func (a *Analyzer) RepCount() int { return a.repCount }

// Config returns the tuning configuration the analyzer was built with.
func (a *Analyzer) Config() *config.TuningConfig { return a.cfg }

// MinVisibility returns the landmark visibility threshold.
func (a *Analyzer) MinVisibility() float64 { return a.minVisibility }

// EvaluateFrame evaluates one pose frame: updates filters and the phase
// machine, scores every applicable criterion, and returns the frame result.
// It never fails for sensor-noise conditions; frames whose primary
// landmarks are not visible leave the phase unchanged and score clean.
func (a *Analyzer) EvaluateFrame(frame pose.Frame) FrameEvaluationResult {
	angles := make(map[string]float64)

	if a.spec.CaptureRefs != nil {
		a.spec.CaptureRefs(a, frame)
	}

	raw, ok := a.spec.Primary(a, frame, angles)
	if !ok {
		return FrameEvaluationResult{
			TimestampMs: frame.TimestampMs,
			Score:       100,
			Level:       LevelForScore(100),
			Phase:       a.machine.Phase(),
			Angles:      angles,
			RepCount:    a.repCount,
		}
	}

	smoothed := a.smoother.Smooth("primary", raw)
	angles["primary"] = smoothed
	vel, velOK := a.velocity.Velocity("primary", smoothed, frame.TimestampMs)

	// Track per-rep extremes of the raw primary angle. The raw signal is
	// used here because EMA lag would otherwise understate range of motion
	// on short reps.
	if !a.repSeen || raw < a.repMin {
		a.repMin = raw
	}
	if !a.repSeen || raw > a.repMax {
		a.repMax = raw
	}
	a.repSeen = true

	phase, completed := a.machine.Step(smoothed, vel, velOK)
	if completed {
		a.repCount++
	}

	fc := &FrameContext{
		Frame:      frame,
		Phase:      phase,
		Primary:    smoothed,
		Velocity:   vel,
		VelocityOK: velOK,
		Angles:     angles,
		A:          a,
	}

	score := 100.0
	var issues []FormIssue
	for _, crit := range a.spec.Criteria {
		if !phaseApplies(crit.Phases, phase) {
			continue
		}
		cscore, issue := crit.Eval(fc)
		cscore = geom.Clamp(cscore, 0, 100)
		deduction := (100 - cscore) * crit.Weight
		score -= deduction
		if issue != nil {
			issue.Deduction = deduction
			issues = append(issues, *issue)
		}
	}
	score = geom.Clamp(score, 0, 100)

	// Highest priority first; stable so same-priority issues keep
	// criterion order.
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Priority.Rank() > issues[j].Priority.Rank()
	})

	if completed {
		// Next rep starts its extreme tracking from the current posture.
		a.repMin = raw
		a.repMax = raw
	}

	return FrameEvaluationResult{
		TimestampMs:  frame.TimestampMs,
		Score:        score,
		Level:        LevelForScore(score),
		Phase:        phase,
		Issues:       issues,
		Angles:       angles,
		CompletedRep: completed,
		RepCount:     a.repCount,
	}
}

// Reset clears all per-session state — filters, velocity buffers, phase,
// rep extremes, rep count, and reference positions — without discarding
// configuration. Feeding the same frame sequence after Reset reproduces
// the scores of a freshly constructed analyzer.
func (a *Analyzer) Reset() {
	a.smoother.Reset()
	a.velocity.Reset()
	a.machine.Reset()
	a.refs = make(map[string]float64)
	a.repMin = 0
	a.repMax = 0
	a.repSeen = false
	a.repCount = 0
}

// RepMin returns the minimum raw primary angle seen this rep.
func (a *Analyzer) RepMin() (float64, bool) { return a.repMin, a.repSeen }

// RepMax returns the maximum raw primary angle seen this rep.
func (a *Analyzer) RepMax() (float64, bool) { return a.repMax, a.repSeen }

// captureRef records a reference value the first time it is seen. Later
// calls for the same key are ignored until Reset.
func (a *Analyzer) captureRef(key string, value float64) {
	if _, ok := a.refs[key]; !ok {
		a.refs[key] = value
	}
}

// ref returns a previously captured reference value.
func (a *Analyzer) ref(key string) (float64, bool) {
	v, ok := a.refs[key]
	return v, ok
}

// captureRefIfVisible captures lm's coordinate (selected by pick) under key
// when the landmark is visible and the key not yet captured.
func (a *Analyzer) captureRefIfVisible(f pose.Frame, id pose.LandmarkID, key string, pick func(pose.Landmark) float64) {
	if _, done := a.refs[key]; done {
		return
	}
	lm, ok := f.Get(id)
	if !ok || lm.Visibility < a.minVisibility {
		return
	}
	a.refs[key] = pick(lm)
}

// jointAngle computes the angle at mid formed by first and last, honouring
// the analyzer's visibility threshold.
func (a *Analyzer) jointAngle(f pose.Frame, first, mid, last pose.LandmarkID) (float64, bool) {
	p1, ok1 := f.Get(first)
	p2, ok2 := f.Get(mid)
	p3, ok3 := f.Get(last)
	if !ok1 || !ok2 || !ok3 {
		return 0, false
	}
	return geom.AngleAtVertex(p1, p2, p3, a.minVisibility)
}

func phaseApplies(phases []Phase, phase Phase) bool {
	if len(phases) == 0 {
		return true
	}
	for _, p := range phases {
		if p == phase {
			return true
		}
	}
	return false
}

// landmarkX returns the X coordinate of a visible landmark.
func (a *Analyzer) landmarkX(f pose.Frame, id pose.LandmarkID) (float64, bool) {
	lm, ok := f.Get(id)
	if !ok || lm.Visibility < a.minVisibility {
		return 0, false
	}
	return lm.X, true
}

// landmarkY returns the Y coordinate of a visible landmark.
func (a *Analyzer) landmarkY(f pose.Frame, id pose.LandmarkID) (float64, bool) {
	lm, ok := f.Get(id)
	if !ok || lm.Visibility < a.minVisibility {
		return 0, false
	}
	return lm.Y, true
}

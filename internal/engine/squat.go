package engine

import (
	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine/geom"
	"github.com/formsense-data/form.report/internal/pose"
)

// Squat issue types.
const (
	IssueSquatDepth  = "squat_depth"
	IssueKneeOverToe = "knee_over_toe"
	IssueTrunkLean   = "trunk_lean"
	IssueHeelLift    = "heel_lift"
	IssueAsymmetry   = "asymmetry"
)

// newSquatSpec builds the squat variant: primary angle hip-knee-ankle,
// criteria depth 40%, left/right symmetry 15%, knee-forward-of-toe 10%+10%,
// trunk lean 15%, heel lift 5%+5%.
func newSquatSpec(cfg *config.TuningConfig) exerciseSpec {
	depthTarget := cfg.GetSquatDepthTargetDeg()
	trunkMax := cfg.GetSquatTrunkLeanMaxDeg()
	kneeTol := cfg.GetSquatKneeOverToeTol()
	heelTol := cfg.GetSquatHeelLiftTol()
	symMin := cfg.GetSymmetryMin()

	movingPhases := []Phase{PhaseDown, PhaseBottom, PhaseUp}

	return exerciseSpec{
		Type: ExerciseSquat,
		Thresholds: PhaseThresholds{
			DownEnterDeg:   cfg.GetSquatPhaseDownDeg(),
			BottomEnterDeg: cfg.GetSquatPhaseBottomDeg(),
			TopEnterDeg:    cfg.GetSquatPhaseTopDeg(),
		},
		Primary: func(a *Analyzer, f pose.Frame, angles map[string]float64) (float64, bool) {
			return sidePairAngle(a, f, angles, "knee",
				pose.LeftHip, pose.LeftKnee, pose.LeftAnkle,
				pose.RightHip, pose.RightKnee, pose.RightAnkle)
		},
		CaptureRefs: func(a *Analyzer, f pose.Frame) {
			a.captureRefIfVisible(f, pose.LeftHeel, "left_heel_y", func(lm pose.Landmark) float64 { return lm.Y })
			a.captureRefIfVisible(f, pose.RightHeel, "right_heel_y", func(lm pose.Landmark) float64 { return lm.Y })
		},
		Criteria: []Criterion{
			{
				Name:   "depth",
				Weight: 0.40,
				Phases: []Phase{PhaseBottom},
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					min, ok := fc.A.RepMin()
					if !ok {
						return 100, nil
					}
					excess := min - depthTarget
					if excess <= 0 {
						return 100, nil
					}
					// Full deduction once the squat is 40° shy of depth.
					score := geom.Clamp(100-excess*2.5, 0, 100)
					return score, &FormIssue{
						Type:       IssueSquatDepth,
						Message:    "Squat is too shallow",
						Priority:   PriorityHigh,
						Suggestion: "Lower your hips until your thighs are near parallel",
						BodyPart:   "hips",
						Current:    min,
						Target:     depthTarget,
					}
				},
			},
			{
				Name:   "symmetry",
				Weight: 0.15,
				Phases: movingPhases,
				Eval:   symmetryCriterion("left_knee", "right_knee", symMin, "knees"),
			},
			kneeOverToeCriterion(pose.SideLeft, 0.10, kneeTol),
			kneeOverToeCriterion(pose.SideRight, 0.10, kneeTol),
			{
				Name:   "trunk_lean",
				Weight: 0.15,
				Phases: movingPhases,
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					lean, ok := trunkLean(fc)
					if !ok {
						return 100, nil
					}
					fc.Angles["trunk_lean"] = lean
					if lean <= trunkMax {
						return 100, nil
					}
					score := geom.Clamp(100-(lean-trunkMax)*(100.0/30.0), 0, 100)
					return score, &FormIssue{
						Type:       IssueTrunkLean,
						Message:    "Torso is leaning too far forward",
						Priority:   PriorityHigh,
						Suggestion: "Keep your chest up and back straight",
						BodyPart:   "back",
						Current:    lean,
						Target:     trunkMax,
					}
				},
			},
			heelLiftCriterion(pose.SideLeft, heelTol),
			heelLiftCriterion(pose.SideRight, heelTol),
		},
	}
}

// kneeOverToeCriterion flags a knee travelling past the toe. Forward is
// inferred per frame from the heel→toe direction so the rule works facing
// either way.
func kneeOverToeCriterion(side pose.Side, weight, tol float64) Criterion {
	knee, toe, heel := pose.LeftKnee, pose.LeftFootIndex, pose.LeftHeel
	bodyPart := "left knee"
	if side == pose.SideRight {
		knee, toe, heel = pose.RightKnee, pose.RightFootIndex, pose.RightHeel
		bodyPart = "right knee"
	}
	return Criterion{
		Name:   "knee_over_toe_" + string(side),
		Weight: weight,
		Phases: []Phase{PhaseDown, PhaseBottom},
		Eval: func(fc *FrameContext) (float64, *FormIssue) {
			kneeX, ok1 := fc.A.landmarkX(fc.Frame, knee)
			toeX, ok2 := fc.A.landmarkX(fc.Frame, toe)
			heelX, ok3 := fc.A.landmarkX(fc.Frame, heel)
			if !ok1 || !ok2 || !ok3 || toeX == heelX {
				return 100, nil
			}
			forward := 1.0
			if toeX < heelX {
				forward = -1.0
			}
			over := (kneeX - toeX) * forward
			excess := over - tol
			if excess <= 0 {
				return 100, nil
			}
			// 0.10 beyond tolerance zeroes the criterion.
			score := geom.Clamp(100-excess*1000, 0, 100)
			return score, &FormIssue{
				Type:       IssueKneeOverToe,
				Message:    "Knee is travelling past the toes",
				Priority:   PriorityHigh,
				Suggestion: "Push your hips back and keep weight on your heels",
				BodyPart:   bodyPart,
				Current:    over,
				Target:     tol,
			}
		},
	}
}

// heelLiftCriterion flags a heel rising off its reference position.
func heelLiftCriterion(side pose.Side, tol float64) Criterion {
	heel := pose.LeftHeel
	refKey := "left_heel_y"
	bodyPart := "left heel"
	if side == pose.SideRight {
		heel = pose.RightHeel
		refKey = "right_heel_y"
		bodyPart = "right heel"
	}
	return Criterion{
		Name:   "heel_lift_" + string(side),
		Weight: 0.05,
		Phases: []Phase{PhaseDown, PhaseBottom, PhaseUp},
		Eval: func(fc *FrameContext) (float64, *FormIssue) {
			refY, ok := fc.A.ref(refKey)
			if !ok {
				return 100, nil
			}
			heelY, ok := fc.A.landmarkY(fc.Frame, heel)
			if !ok {
				return 100, nil
			}
			// Image Y grows downward; a lifted heel has a smaller Y.
			lift := refY - heelY
			excess := lift - tol
			if excess <= 0 {
				return 100, nil
			}
			score := geom.Clamp(100-excess*2000, 0, 100)
			return score, &FormIssue{
				Type:       IssueHeelLift,
				Message:    "Heel is lifting off the floor",
				Priority:   PriorityMedium,
				Suggestion: "Keep your whole foot planted",
				BodyPart:   bodyPart,
				Current:    lift,
				Target:     tol,
			}
		},
	}
}

// sidePairAngle computes a joint angle for each body side, stores both and
// their mean under name, and returns the mean. If only one side is visible
// that side alone is used; if neither is visible ok is false.
func sidePairAngle(a *Analyzer, f pose.Frame, angles map[string]float64, name string,
	l1, l2, l3, r1, r2, r3 pose.LandmarkID) (float64, bool) {
	left, lok := a.jointAngle(f, l1, l2, l3)
	right, rok := a.jointAngle(f, r1, r2, r3)
	if lok {
		angles["left_"+name] = left
	}
	if rok {
		angles["right_"+name] = right
	}
	switch {
	case lok && rok:
		mean := (left + right) / 2
		angles[name] = mean
		return mean, true
	case lok:
		angles[name] = left
		return left, true
	case rok:
		angles[name] = right
		return right, true
	default:
		return 0, false
	}
}

// symmetryCriterion scores the closeness of a left/right angle pair already
// computed into fc.Angles; silently passes when either side is missing.
func symmetryCriterion(leftKey, rightKey string, symMin float64, bodyPart string) func(*FrameContext) (float64, *FormIssue) {
	return func(fc *FrameContext) (float64, *FormIssue) {
		left, lok := fc.Angles[leftKey]
		right, rok := fc.Angles[rightKey]
		if !lok || !rok {
			return 100, nil
		}
		sym := geom.Symmetry(left, right)
		fc.Angles["symmetry"] = sym
		if sym >= symMin {
			return 100, nil
		}
		score := geom.Clamp(100*sym/symMin, 0, 100)
		return score, &FormIssue{
			Type:       IssueAsymmetry,
			Message:    "Left and right sides are moving unevenly",
			Priority:   PriorityMedium,
			Suggestion: "Move both sides together at the same height",
			BodyPart:   bodyPart,
			Current:    sym,
			Target:     symMin,
		}
	}
}

// trunkLean returns the deviation of the shoulder-to-hip segment from
// vertical, in degrees.
func trunkLean(fc *FrameContext) (float64, bool) {
	ls, ok1 := fc.Frame.Get(pose.LeftShoulder)
	rs, ok2 := fc.Frame.Get(pose.RightShoulder)
	lh, ok3 := fc.Frame.Get(pose.LeftHip)
	rh, ok4 := fc.Frame.Get(pose.RightHip)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	return geom.VerticalAngle(geom.Midpoint(ls, rs), geom.Midpoint(lh, rh), fc.A.MinVisibility())
}

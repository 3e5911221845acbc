package engine

import (
	"math"

	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine/geom"
	"github.com/formsense-data/form.report/internal/pose"
)

// Shoulder press issue types.
const (
	IssuePressLockout = "press_lockout"
	IssuePressPath    = "press_path"
	IssueWristBalance = "wrist_balance"
	IssueBackArch     = "back_arch"
)

// newShoulderPressSpec builds the shoulder-press variant. The elbow angle
// grows from the rack position toward lockout, so the phase machine runs
// inverted. Criteria: range-of-motion 35%, vertical press path 10%+10%,
// symmetry 20%, wrist-height balance 10%, lower-back arch 15%.
func newShoulderPressSpec(cfg *config.TuningConfig) exerciseSpec {
	lockoutMin := cfg.GetPressLockoutMinDeg()
	pathTol := cfg.GetPressPathTol()
	balanceTol := cfg.GetPressWristBalanceTol()
	archMax := cfg.GetPressBackArchMaxDeg()
	symMin := cfg.GetSymmetryMin()

	movingPhases := []Phase{PhaseDown, PhaseBottom, PhaseUp}

	return exerciseSpec{
		Type:     ExerciseShoulderPress,
		Inverted: true,
		Thresholds: PhaseThresholds{
			DownEnterDeg:   cfg.GetPressPhaseDownDeg(),
			BottomEnterDeg: cfg.GetPressPhaseBottomDeg(),
			TopEnterDeg:    cfg.GetPressPhaseTopDeg(),
		},
		Primary: func(a *Analyzer, f pose.Frame, angles map[string]float64) (float64, bool) {
			return sidePairAngle(a, f, angles, "elbow",
				pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist,
				pose.RightShoulder, pose.RightElbow, pose.RightWrist)
		},
		Criteria: []Criterion{
			{
				Name:   "range_of_motion",
				Weight: 0.35,
				Phases: []Phase{PhaseBottom},
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					max, ok := fc.A.RepMax()
					if !ok {
						return 100, nil
					}
					shortfall := lockoutMin - max
					if shortfall <= 0 {
						return 100, nil
					}
					score := geom.Clamp(100-shortfall*2, 0, 100)
					return score, &FormIssue{
						Type:       IssuePressLockout,
						Message:    "Press is stopping short of lockout",
						Priority:   PriorityHigh,
						Suggestion: "Press until your arms are fully extended overhead",
						BodyPart:   "arms",
						Current:    max,
						Target:     lockoutMin,
					}
				},
			},
			pressPathCriterion(pose.SideLeft, pathTol),
			pressPathCriterion(pose.SideRight, pathTol),
			{
				Name:   "symmetry",
				Weight: 0.20,
				Phases: movingPhases,
				Eval:   symmetryCriterion("left_elbow", "right_elbow", symMin, "arms"),
			},
			{
				Name:   "wrist_balance",
				Weight: 0.10,
				Phases: movingPhases,
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					leftY, ok1 := fc.A.landmarkY(fc.Frame, pose.LeftWrist)
					rightY, ok2 := fc.A.landmarkY(fc.Frame, pose.RightWrist)
					if !ok1 || !ok2 {
						return 100, nil
					}
					diff := math.Abs(leftY - rightY)
					excess := diff - balanceTol
					if excess <= 0 {
						return 100, nil
					}
					score := geom.Clamp(100-excess*1000, 0, 100)
					return score, &FormIssue{
						Type:       IssueWristBalance,
						Message:    "Wrists are pressing at uneven heights",
						Priority:   PriorityMedium,
						Suggestion: "Drive both hands up at the same pace",
						BodyPart:   "wrists",
						Current:    diff,
						Target:     balanceTol,
					}
				},
			},
			{
				Name:   "back_arch",
				Weight: 0.15,
				Phases: movingPhases,
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					lean, ok := trunkLean(fc)
					if !ok {
						return 100, nil
					}
					if lean <= archMax {
						return 100, nil
					}
					score := geom.Clamp(100-(lean-archMax)*(100.0/20.0), 0, 100)
					return score, &FormIssue{
						Type:       IssueBackArch,
						Message:    "Lower back is arching under the press",
						Priority:   PriorityHigh,
						Suggestion: "Squeeze your glutes and ribs down to stay upright",
						BodyPart:   "lower back",
						Current:    lean,
						Target:     archMax,
					}
				},
			},
		},
	}
}

// pressPathCriterion flags a wrist drifting off the vertical line through
// its shoulder during the press.
func pressPathCriterion(side pose.Side, tol float64) Criterion {
	wrist, shoulder := pose.LeftWrist, pose.LeftShoulder
	bodyPart := "left wrist"
	if side == pose.SideRight {
		wrist, shoulder = pose.RightWrist, pose.RightShoulder
		bodyPart = "right wrist"
	}
	return Criterion{
		Name:   "press_path_" + string(side),
		Weight: 0.10,
		Phases: []Phase{PhaseDown, PhaseBottom, PhaseUp},
		Eval: func(fc *FrameContext) (float64, *FormIssue) {
			wristX, ok1 := fc.A.landmarkX(fc.Frame, wrist)
			shoulderX, ok2 := fc.A.landmarkX(fc.Frame, shoulder)
			if !ok1 || !ok2 {
				return 100, nil
			}
			drift := math.Abs(wristX - shoulderX)
			excess := drift - tol
			if excess <= 0 {
				return 100, nil
			}
			score := geom.Clamp(100-excess*1000, 0, 100)
			return score, &FormIssue{
				Type:       IssuePressPath,
				Message:    "Press path is drifting off vertical",
				Priority:   PriorityMedium,
				Suggestion: "Keep the weight stacked over your shoulder",
				BodyPart:   bodyPart,
				Current:    drift,
				Target:     tol,
			}
		},
	}
}

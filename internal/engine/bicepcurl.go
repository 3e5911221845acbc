package engine

import (
	"math"

	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine/geom"
	"github.com/formsense-data/form.report/internal/pose"
)

// Bicep curl issue types.
const (
	IssuePartialROM   = "partial_rom"
	IssueElbowDrift   = "elbow_drift"
	IssueShoulderRise = "shoulder_rise"
	IssueMomentum     = "momentum"
)

// newBicepCurlSpec builds the bicep-curl variant: primary angle
// shoulder-elbow-wrist, criteria range-of-motion 35%, elbow drift 10%+10%,
// shoulder rise 10%+10%, momentum 15%, symmetry 10%.
func newBicepCurlSpec(cfg *config.TuningConfig) exerciseSpec {
	romTarget := cfg.GetCurlROMTargetDeg()
	driftTol := cfg.GetCurlElbowDriftTol()
	riseTol := cfg.GetCurlShoulderRiseTol()
	maxVel := cfg.GetCurlMaxVelocityDps()
	symMin := cfg.GetSymmetryMin()

	movingPhases := []Phase{PhaseDown, PhaseBottom, PhaseUp}

	return exerciseSpec{
		Type: ExerciseBicepCurl,
		Thresholds: PhaseThresholds{
			DownEnterDeg:   cfg.GetCurlPhaseDownDeg(),
			BottomEnterDeg: cfg.GetCurlPhaseBottomDeg(),
			TopEnterDeg:    cfg.GetCurlPhaseTopDeg(),
		},
		Primary: func(a *Analyzer, f pose.Frame, angles map[string]float64) (float64, bool) {
			return sidePairAngle(a, f, angles, "elbow",
				pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist,
				pose.RightShoulder, pose.RightElbow, pose.RightWrist)
		},
		CaptureRefs: func(a *Analyzer, f pose.Frame) {
			a.captureRefIfVisible(f, pose.LeftElbow, "left_elbow_x", func(lm pose.Landmark) float64 { return lm.X })
			a.captureRefIfVisible(f, pose.RightElbow, "right_elbow_x", func(lm pose.Landmark) float64 { return lm.X })
			a.captureRefIfVisible(f, pose.LeftShoulder, "left_shoulder_y", func(lm pose.Landmark) float64 { return lm.Y })
			a.captureRefIfVisible(f, pose.RightShoulder, "right_shoulder_y", func(lm pose.Landmark) float64 { return lm.Y })
		},
		Criteria: []Criterion{
			{
				Name:   "range_of_motion",
				Weight: 0.35,
				Phases: []Phase{PhaseBottom},
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					min, ok := fc.A.RepMin()
					if !ok {
						return 100, nil
					}
					excess := min - romTarget
					if excess <= 0 {
						return 100, nil
					}
					score := geom.Clamp(100-excess*2, 0, 100)
					return score, &FormIssue{
						Type:       IssuePartialROM,
						Message:    "Curl is not reaching full flexion",
						Priority:   PriorityHigh,
						Suggestion: "Bring the weight all the way up to your shoulder",
						BodyPart:   "elbows",
						Current:    min,
						Target:     romTarget,
					}
				},
			},
			elbowDriftCriterion(pose.SideLeft, driftTol),
			elbowDriftCriterion(pose.SideRight, driftTol),
			shoulderRiseCriterion(pose.SideLeft, 0.10, riseTol, IssueShoulderRise,
				"Shoulder is rising during the curl", "Keep your shoulders down and relaxed"),
			shoulderRiseCriterion(pose.SideRight, 0.10, riseTol, IssueShoulderRise,
				"Shoulder is rising during the curl", "Keep your shoulders down and relaxed"),
			{
				Name:   "momentum",
				Weight: 0.15,
				Phases: []Phase{PhaseDown, PhaseUp},
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					if !fc.VelocityOK {
						return 100, nil
					}
					speed := math.Abs(fc.Velocity)
					if speed <= maxVel {
						return 100, nil
					}
					score := geom.Clamp(100-(speed-maxVel)*(100.0/200.0), 0, 100)
					return score, &FormIssue{
						Type:       IssueMomentum,
						Message:    "Weight is being swung with momentum",
						Priority:   PriorityHigh,
						Suggestion: "Slow down and control the movement",
						BodyPart:   "arms",
						Current:    speed,
						Target:     maxVel,
					}
				},
			},
			{
				Name:   "symmetry",
				Weight: 0.10,
				Phases: movingPhases,
				Eval:   symmetryCriterion("left_elbow", "right_elbow", symMin, "arms"),
			},
		},
	}
}

// elbowDriftCriterion flags an upper arm swinging away from its captured
// starting position.
func elbowDriftCriterion(side pose.Side, tol float64) Criterion {
	elbow := pose.LeftElbow
	refKey := "left_elbow_x"
	bodyPart := "left elbow"
	if side == pose.SideRight {
		elbow = pose.RightElbow
		refKey = "right_elbow_x"
		bodyPart = "right elbow"
	}
	return Criterion{
		Name:   "elbow_drift_" + string(side),
		Weight: 0.10,
		Phases: []Phase{PhaseDown, PhaseBottom, PhaseUp},
		Eval: func(fc *FrameContext) (float64, *FormIssue) {
			refX, ok := fc.A.ref(refKey)
			if !ok {
				return 100, nil
			}
			x, ok := fc.A.landmarkX(fc.Frame, elbow)
			if !ok {
				return 100, nil
			}
			drift := math.Abs(x - refX)
			excess := drift - tol
			if excess <= 0 {
				return 100, nil
			}
			score := geom.Clamp(100-excess*1000, 0, 100)
			return score, &FormIssue{
				Type:       IssueElbowDrift,
				Message:    "Elbow is drifting from your side",
				Priority:   PriorityMedium,
				Suggestion: "Pin your elbow to your torso",
				BodyPart:   bodyPart,
				Current:    drift,
				Target:     tol,
			}
		},
	}
}

// shoulderRiseCriterion flags a shoulder lifting above its captured resting
// height; shared by the bicep curl (shoulder rise) and the lateral raise
// (shrug), which differ only in tag and wording.
func shoulderRiseCriterion(side pose.Side, weight, tol float64, issueType, message, suggestion string) Criterion {
	shoulder := pose.LeftShoulder
	refKey := "left_shoulder_y"
	bodyPart := "left shoulder"
	if side == pose.SideRight {
		shoulder = pose.RightShoulder
		refKey = "right_shoulder_y"
		bodyPart = "right shoulder"
	}
	return Criterion{
		Name:   issueType + "_" + string(side),
		Weight: weight,
		Phases: []Phase{PhaseDown, PhaseBottom, PhaseUp},
		Eval: func(fc *FrameContext) (float64, *FormIssue) {
			refY, ok := fc.A.ref(refKey)
			if !ok {
				return 100, nil
			}
			y, ok := fc.A.landmarkY(fc.Frame, shoulder)
			if !ok {
				return 100, nil
			}
			rise := refY - y
			excess := rise - tol
			if excess <= 0 {
				return 100, nil
			}
			score := geom.Clamp(100-excess*2000, 0, 100)
			return score, &FormIssue{
				Type:       issueType,
				Message:    message,
				Priority:   PriorityMedium,
				Suggestion: suggestion,
				BodyPart:   bodyPart,
				Current:    rise,
				Target:     tol,
			}
		},
	}
}

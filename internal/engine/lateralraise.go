package engine

import (
	"math"

	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine/geom"
	"github.com/formsense-data/form.report/internal/pose"
)

// Lateral raise issue types.
const (
	IssueRaiseHeight   = "raise_height"
	IssueElbowBend     = "elbow_bend"
	IssueTorsoSway     = "torso_sway"
	IssueShoulderShrug = "shoulder_shrug"
)

// newLateralRaiseSpec builds the lateral-raise variant. The primary angle
// (elbow-shoulder-hip) grows as the arms come up, so the phase machine runs
// inverted. Criteria: raise height 35%, elbow bend 15%, symmetry 20%, torso
// sway 15%, shoulder shrug 7.5%+7.5%.
func newLateralRaiseSpec(cfg *config.TuningConfig) exerciseSpec {
	raiseMin := cfg.GetRaiseMinDeg()
	raiseMax := cfg.GetRaiseMaxDeg()
	elbowMin := cfg.GetRaiseElbowMinDeg()
	swayTol := cfg.GetRaiseTorsoSwayTol()
	shrugTol := cfg.GetRaiseShrugTol()
	symMin := cfg.GetSymmetryMin()

	movingPhases := []Phase{PhaseDown, PhaseBottom, PhaseUp}

	return exerciseSpec{
		Type:     ExerciseLateralRaise,
		Inverted: true,
		Thresholds: PhaseThresholds{
			DownEnterDeg:   cfg.GetRaisePhaseDownDeg(),
			BottomEnterDeg: cfg.GetRaisePhaseBottomDeg(),
			TopEnterDeg:    cfg.GetRaisePhaseTopDeg(),
		},
		Primary: func(a *Analyzer, f pose.Frame, angles map[string]float64) (float64, bool) {
			raise, ok := sidePairAngle(a, f, angles, "raise",
				pose.LeftElbow, pose.LeftShoulder, pose.LeftHip,
				pose.RightElbow, pose.RightShoulder, pose.RightHip)
			if !ok {
				return 0, false
			}
			// Elbow bend is a secondary signal; compute it alongside so the
			// criterion and the UI overlay share one value.
			sidePairAngle(a, f, angles, "elbow",
				pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist,
				pose.RightShoulder, pose.RightElbow, pose.RightWrist)
			return raise, true
		},
		CaptureRefs: func(a *Analyzer, f pose.Frame) {
			a.captureRefIfVisible(f, pose.Nose, "nose_x", func(lm pose.Landmark) float64 { return lm.X })
			a.captureRefIfVisible(f, pose.LeftShoulder, "left_shoulder_y", func(lm pose.Landmark) float64 { return lm.Y })
			a.captureRefIfVisible(f, pose.RightShoulder, "right_shoulder_y", func(lm pose.Landmark) float64 { return lm.Y })
		},
		Criteria: []Criterion{
			{
				Name:   "raise_height",
				Weight: 0.35,
				Phases: []Phase{PhaseBottom},
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					max, ok := fc.A.RepMax()
					if !ok {
						return 100, nil
					}
					switch {
					case max < raiseMin:
						score := geom.Clamp(100-(raiseMin-max)*2.5, 0, 100)
						return score, &FormIssue{
							Type:       IssueRaiseHeight,
							Message:    "Arms are not reaching shoulder height",
							Priority:   PriorityHigh,
							Suggestion: "Raise your arms until they are parallel with the floor",
							BodyPart:   "shoulders",
							Current:    max,
							Target:     raiseMin,
						}
					case max > raiseMax:
						score := geom.Clamp(100-(max-raiseMax)*2.5, 0, 100)
						return score, &FormIssue{
							Type:       IssueRaiseHeight,
							Message:    "Arms are going above shoulder height",
							Priority:   PriorityMedium,
							Suggestion: "Stop the raise at shoulder level",
							BodyPart:   "shoulders",
							Current:    max,
							Target:     raiseMax,
						}
					default:
						return 100, nil
					}
				},
			},
			{
				Name:   "elbow_bend",
				Weight: 0.15,
				Phases: movingPhases,
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					elbow, ok := fc.Angles["elbow"]
					if !ok {
						return 100, nil
					}
					if elbow >= elbowMin {
						return 100, nil
					}
					score := geom.Clamp(100-(elbowMin-elbow)*2, 0, 100)
					return score, &FormIssue{
						Type:       IssueElbowBend,
						Message:    "Elbows are bending too much",
						Priority:   PriorityMedium,
						Suggestion: "Keep a slight, fixed bend in the elbows",
						BodyPart:   "elbows",
						Current:    elbow,
						Target:     elbowMin,
					}
				},
			},
			{
				Name:   "symmetry",
				Weight: 0.20,
				Phases: movingPhases,
				Eval:   symmetryCriterion("left_raise", "right_raise", symMin, "arms"),
			},
			{
				Name:   "torso_sway",
				Weight: 0.15,
				Phases: movingPhases,
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					refX, ok := fc.A.ref("nose_x")
					if !ok {
						return 100, nil
					}
					x, ok := fc.A.landmarkX(fc.Frame, pose.Nose)
					if !ok {
						return 100, nil
					}
					sway := math.Abs(x - refX)
					excess := sway - swayTol
					if excess <= 0 {
						return 100, nil
					}
					score := geom.Clamp(100-excess*1000, 0, 100)
					return score, &FormIssue{
						Type:       IssueTorsoSway,
						Message:    "Torso is swaying to lift the weight",
						Priority:   PriorityHigh,
						Suggestion: "Brace your core and keep your body still",
						BodyPart:   "torso",
						Current:    sway,
						Target:     swayTol,
					}
				},
			},
			shoulderRiseCriterion(pose.SideLeft, 0.075, shrugTol, IssueShoulderShrug,
				"Shoulders are shrugging upward", "Keep your shoulders pressed down"),
			shoulderRiseCriterion(pose.SideRight, 0.075, shrugTol, IssueShoulderShrug,
				"Shoulders are shrugging upward", "Keep your shoulders pressed down"),
		},
	}
}

package engine

import (
	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine/geom"
	"github.com/formsense-data/form.report/internal/pose"
)

// Push-up issue types.
const (
	IssuePushupDepth  = "pushup_depth"
	IssueBodyLine     = "body_line"
	IssueHipSag       = "hip_sag"
	IssueHipPike      = "hip_pike"
	IssueNeckPosition = "neck_position"
)

// pushupHipDevTol is the normalised vertical deviation of the hips from the
// shoulder-ankle line tolerated before sag/pike is flagged. Internal
// constant — not user-tunable.
const pushupHipDevTol = 0.03

// newPushUpSpec builds the push-up variant: primary angle
// shoulder-elbow-wrist, body line from shoulder-hip-ankle. Criteria: depth
// 30%, body-line straightness 25%, hip sag/pike 20%, symmetry 10%, neck
// position 15%.
func newPushUpSpec(cfg *config.TuningConfig) exerciseSpec {
	depthTarget := cfg.GetPushupDepthTargetDeg()
	bodyLineMin := cfg.GetPushupBodyLineMinDeg()
	neckMin := cfg.GetPushupNeckMinDeg()
	symMin := cfg.GetSymmetryMin()

	return exerciseSpec{
		Type: ExercisePushUp,
		Thresholds: PhaseThresholds{
			DownEnterDeg:   cfg.GetPushupPhaseDownDeg(),
			BottomEnterDeg: cfg.GetPushupPhaseBottomDeg(),
			TopEnterDeg:    cfg.GetPushupPhaseTopDeg(),
		},
		Primary: func(a *Analyzer, f pose.Frame, angles map[string]float64) (float64, bool) {
			elbow, ok := sidePairAngle(a, f, angles, "elbow",
				pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist,
				pose.RightShoulder, pose.RightElbow, pose.RightWrist)
			if !ok {
				return 0, false
			}
			sidePairAngle(a, f, angles, "body_line",
				pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle,
				pose.RightShoulder, pose.RightHip, pose.RightAnkle)
			return elbow, true
		},
		Criteria: []Criterion{
			{
				Name:   "depth",
				Weight: 0.30,
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
					score := geom.Clamp(100-excess*2.5, 0, 100)
					return score, &FormIssue{
						Type:       IssuePushupDepth,
						Message:    "Push-up is too shallow",
						Priority:   PriorityHigh,
						Suggestion: "Lower your chest closer to the floor",
						BodyPart:   "chest",
						Current:    min,
						Target:     depthTarget,
					}
				},
			},
			{
				Name:   "body_line",
				Weight: 0.25,
				// A plank fault matters in every phase, including the top.
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					line, ok := fc.Angles["body_line"]
					if !ok {
						return 100, nil
					}
					if line >= bodyLineMin {
						return 100, nil
					}
					score := geom.Clamp(100-(bodyLineMin-line)*(100.0/40.0), 0, 100)
					return score, &FormIssue{
						Type:       IssueBodyLine,
						Message:    "Body is not holding a straight line",
						Priority:   PriorityHigh,
						Suggestion: "Brace your core from shoulders to ankles",
						BodyPart:   "core",
						Current:    line,
						Target:     bodyLineMin,
					}
				},
			},
			{
				Name:   "hip_sag_pike",
				Weight: 0.20,
				Eval:   pushupHipCriterion,
			},
			{
				Name:   "symmetry",
				Weight: 0.10,
				Phases: []Phase{PhaseDown, PhaseBottom, PhaseUp},
				Eval:   symmetryCriterion("left_elbow", "right_elbow", symMin, "arms"),
			},
			{
				Name:   "neck_position",
				Weight: 0.15,
				Eval: func(fc *FrameContext) (float64, *FormIssue) {
					nose, ok1 := fc.Frame.Get(pose.Nose)
					ls, ok2 := fc.Frame.Get(pose.LeftShoulder)
					rs, ok3 := fc.Frame.Get(pose.RightShoulder)
					lh, ok4 := fc.Frame.Get(pose.LeftHip)
					rh, ok5 := fc.Frame.Get(pose.RightHip)
					if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
						return 100, nil
					}
					minVis := fc.A.MinVisibility()
					neck, ok := geom.AngleAtVertex(nose, geom.Midpoint(ls, rs), geom.Midpoint(lh, rh), minVis)
					if !ok {
						return 100, nil
					}
					fc.Angles["neck"] = neck
					if neck >= neckMin {
						return 100, nil
					}
					score := geom.Clamp(100-(neckMin-neck)*2, 0, 100)
					return score, &FormIssue{
						Type:       IssueNeckPosition,
						Message:    "Neck is craning out of line",
						Priority:   PriorityLow,
						Suggestion: "Keep your gaze down and neck neutral",
						BodyPart:   "neck",
						Current:    neck,
						Target:     neckMin,
					}
				},
			},
		},
	}
}

// pushupHipCriterion measures the hips' vertical deviation from the
// shoulder-ankle line: positive (toward the floor) is sag, negative is
// pike. Distinguishing the two matters because the cues are opposite.
func pushupHipCriterion(fc *FrameContext) (float64, *FormIssue) {
	minVis := fc.A.MinVisibility()
	ls, ok1 := fc.Frame.Get(pose.LeftShoulder)
	rs, ok2 := fc.Frame.Get(pose.RightShoulder)
	lh, ok3 := fc.Frame.Get(pose.LeftHip)
	rh, ok4 := fc.Frame.Get(pose.RightHip)
	la, ok5 := fc.Frame.Get(pose.LeftAnkle)
	ra, ok6 := fc.Frame.Get(pose.RightAnkle)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return 100, nil
	}
	shoulder := geom.Midpoint(ls, rs)
	hip := geom.Midpoint(lh, rh)
	ankle := geom.Midpoint(la, ra)
	if shoulder.Visibility < minVis || hip.Visibility < minVis || ankle.Visibility < minVis {
		return 100, nil
	}

	dx := ankle.X - shoulder.X
	dy := ankle.Y - shoulder.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 100, nil
	}
	t := ((hip.X-shoulder.X)*dx + (hip.Y-shoulder.Y)*dy) / lenSq
	lineY := shoulder.Y + t*dy
	dev := hip.Y - lineY // image Y grows downward: positive = sag

	excess := dev
	if excess < 0 {
		excess = -excess
	}
	excess -= pushupHipDevTol
	if excess <= 0 {
		return 100, nil
	}
	score := geom.Clamp(100-excess*1500, 0, 100)
	if dev > 0 {
		return score, &FormIssue{
			Type:       IssueHipSag,
			Message:    "Hips are sagging toward the floor",
			Priority:   PriorityHigh,
			Suggestion: "Squeeze your glutes and lift your hips into line",
			BodyPart:   "hips",
			Current:    dev,
			Target:     pushupHipDevTol,
		}
	}
	return score, &FormIssue{
		Type:       IssueHipPike,
		Message:    "Hips are piking upward",
		Priority:   PriorityMedium,
		Suggestion: "Lower your hips into a straight plank",
		BodyPart:   "hips",
		Current:    dev,
		Target:     -pushupHipDevTol,
	}
}

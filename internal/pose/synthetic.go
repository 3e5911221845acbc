package pose

import (
	"math"
	"math/rand"
)

// SyntheticGenerator produces synthetic pose frames for testing and
// demos. Landmarks are placed in normalized image coordinates (x right,
// y down) so a requested joint angle is reproduced exactly, with
// optional gaussian jitter on top.
type SyntheticGenerator struct {
	FrameRateHz float64
	// Jitter is the standard deviation of positional noise added to
	// every landmark coordinate. Zero disables noise.
	Jitter     float64
	Visibility float64

	rng      *rand.Rand
	frameIdx int
}

// SquatFlaw selects a deliberate form fault for generated squat reps.
type SquatFlaw string

const (
	SquatFlawNone        SquatFlaw = ""
	SquatFlawShallow     SquatFlaw = "shallow"
	SquatFlawKneeForward SquatFlaw = "knee_forward"
)

// CurlFlaw selects a deliberate form fault for generated curl reps.
type CurlFlaw string

const (
	CurlFlawNone    CurlFlaw = ""
	CurlFlawPartial CurlFlaw = "partial"
)

// RaiseFlaw selects a deliberate form fault for generated lateral raise reps.
type RaiseFlaw string

const (
	RaiseFlawNone RaiseFlaw = ""
	RaiseFlawSway RaiseFlaw = "sway"
)

// PressFlaw selects a deliberate form fault for generated shoulder press reps.
type PressFlaw string

const (
	PressFlawNone PressFlaw = ""
	PressFlawArch PressFlaw = "arch"
)

// PushUpFlaw selects a deliberate form fault for generated push-up reps.
type PushUpFlaw string

const (
	PushUpFlawNone PushUpFlaw = ""
	PushUpFlawSag  PushUpFlaw = "sag"
)

// NewSyntheticGenerator creates a generator with a fixed seed so output
// is reproducible.
func NewSyntheticGenerator(seed int64) *SyntheticGenerator {
	return &SyntheticGenerator{
		FrameRateHz: 30,
		Visibility:  0.95,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (g *SyntheticGenerator) nextTimestamp() int64 {
	ts := int64(float64(g.frameIdx) * 1000.0 / g.FrameRateHz)
	g.frameIdx++
	return ts
}

func (g *SyntheticGenerator) jitter() float64 {
	if g.Jitter == 0 {
		return 0
	}
	return g.rng.NormFloat64() * g.Jitter
}

func (g *SyntheticGenerator) landmark(id LandmarkID, x, y float64) Landmark {
	return Landmark{
		ID:         id,
		X:          x + g.jitter(),
		Y:          y + g.jitter(),
		Visibility: g.Visibility,
	}
}

// SquatFrame builds one squat frame with the given knee angle (degrees,
// hip-knee-ankle). kneeShift pushes the knees forward of the feet.
func (g *SyntheticGenerator) SquatFrame(kneeAngle, kneeShift float64) Frame {
	ts := g.nextTimestamp()
	rad := kneeAngle * math.Pi / 180

	landmarks := make([]Landmark, 0, len(AllLandmarkIDs))
	for _, side := range []struct {
		x        float64
		shoulder LandmarkID
		elbow    LandmarkID
		wrist    LandmarkID
		hip      LandmarkID
		knee     LandmarkID
		ankle    LandmarkID
		heel     LandmarkID
		toe      LandmarkID
	}{
		{0.45, LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle, LeftHeel, LeftFootIndex},
		{0.55, RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle, RightHeel, RightFootIndex},
	} {
		ankleX, ankleY := side.x, 0.95
		kneeX, kneeY := ankleX+kneeShift, 0.70
		// hip placed so the interior angle at the knee is exact
		hipX := kneeX + 0.25*math.Sin(rad)
		hipY := kneeY + 0.25*math.Cos(rad)
		shoulderX, shoulderY := hipX+0.03, hipY-0.35

		landmarks = append(landmarks,
			g.landmark(side.ankle, ankleX, ankleY),
			g.landmark(side.heel, ankleX-0.03, 0.97),
			g.landmark(side.toe, ankleX+0.05, 0.97),
			g.landmark(side.knee, kneeX, kneeY),
			g.landmark(side.hip, hipX, hipY),
			g.landmark(side.shoulder, shoulderX, shoulderY),
			g.landmark(side.elbow, shoulderX+0.02, shoulderY+0.15),
			g.landmark(side.wrist, shoulderX+0.04, shoulderY+0.27),
		)
	}
	landmarks = append(landmarks, g.landmark(Nose, 0.53, 0.15))

	return NewFrame(ts, landmarks...)
}

// CurlFrame builds one bicep curl frame with the given elbow angle
// (degrees, shoulder-elbow-wrist).
func (g *SyntheticGenerator) CurlFrame(elbowAngle float64) Frame {
	ts := g.nextTimestamp()
	rad := elbowAngle * math.Pi / 180

	landmarks := make([]Landmark, 0, len(AllLandmarkIDs))
	for _, side := range []struct {
		x        float64
		shoulder LandmarkID
		elbow    LandmarkID
		wrist    LandmarkID
		hip      LandmarkID
		knee     LandmarkID
		ankle    LandmarkID
		heel     LandmarkID
		toe      LandmarkID
	}{
		{0.45, LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle, LeftHeel, LeftFootIndex},
		{0.55, RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle, RightHeel, RightFootIndex},
	} {
		shoulderX, shoulderY := side.x, 0.30
		elbowX, elbowY := shoulderX, 0.55
		// wrist placed so the interior angle at the elbow is exact
		wristX := elbowX + 0.22*math.Sin(rad)
		wristY := elbowY - 0.22*math.Cos(rad)

		landmarks = append(landmarks,
			g.landmark(side.shoulder, shoulderX, shoulderY),
			g.landmark(side.elbow, elbowX, elbowY),
			g.landmark(side.wrist, wristX, wristY),
			g.landmark(side.hip, side.x, 0.72),
			g.landmark(side.knee, side.x, 0.92),
			g.landmark(side.ankle, side.x, 1.1),
			g.landmark(side.heel, side.x-0.03, 1.12),
			g.landmark(side.toe, side.x+0.05, 1.12),
		)
	}
	landmarks = append(landmarks, g.landmark(Nose, 0.5, 0.12))

	return NewFrame(ts, landmarks...)
}

// RaiseFrame builds one lateral raise frame with the given raise angle
// (degrees, elbow-shoulder-hip). noseShift displaces the nose laterally
// to simulate torso sway.
func (g *SyntheticGenerator) RaiseFrame(raiseAngle, noseShift float64) Frame {
	ts := g.nextTimestamp()
	rad := raiseAngle * math.Pi / 180

	landmarks := make([]Landmark, 0, len(AllLandmarkIDs))
	for _, side := range []struct {
		x        float64
		dir      float64
		shoulder LandmarkID
		elbow    LandmarkID
		wrist    LandmarkID
		hip      LandmarkID
		knee     LandmarkID
		ankle    LandmarkID
		heel     LandmarkID
		toe      LandmarkID
	}{
		{0.45, -1, LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle, LeftHeel, LeftFootIndex},
		{0.55, 1, RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle, RightHeel, RightFootIndex},
	} {
		shoulderX, shoulderY := side.x, 0.30
		// elbow placed so the interior angle at the shoulder, measured
		// against the hip straight below, is exact; the wrist stays
		// collinear so the elbow holds dead straight
		elbowX := shoulderX + side.dir*0.18*math.Sin(rad)
		elbowY := shoulderY + 0.18*math.Cos(rad)
		wristX := shoulderX + side.dir*0.33*math.Sin(rad)
		wristY := shoulderY + 0.33*math.Cos(rad)

		landmarks = append(landmarks,
			g.landmark(side.shoulder, shoulderX, shoulderY),
			g.landmark(side.elbow, elbowX, elbowY),
			g.landmark(side.wrist, wristX, wristY),
			g.landmark(side.hip, side.x, 0.62),
			g.landmark(side.knee, side.x, 0.82),
			g.landmark(side.ankle, side.x, 1.02),
			g.landmark(side.heel, side.x-0.03, 1.04),
			g.landmark(side.toe, side.x+0.05, 1.04),
		)
	}
	landmarks = append(landmarks, g.landmark(Nose, 0.5+noseShift, 0.12))

	return NewFrame(ts, landmarks...)
}

// PressFrame builds one shoulder press frame with the given elbow angle
// (degrees, shoulder-elbow-wrist), wrists tracking straight above the
// shoulders. leanShift displaces the shoulder girdle laterally so the
// trunk leans off vertical, as an arching lower back reads on camera.
func (g *SyntheticGenerator) PressFrame(elbowAngle, leanShift float64) Frame {
	ts := g.nextTimestamp()
	rad := elbowAngle * math.Pi / 180
	// upper arm and forearm share length 0.25, so the shoulder-wrist
	// chord follows from the elbow angle alone
	chord := 2 * 0.25 * math.Sin(rad/2)

	landmarks := make([]Landmark, 0, len(AllLandmarkIDs))
	for _, side := range []struct {
		x        float64
		dir      float64
		shoulder LandmarkID
		elbow    LandmarkID
		wrist    LandmarkID
		hip      LandmarkID
		knee     LandmarkID
		ankle    LandmarkID
		heel     LandmarkID
		toe      LandmarkID
	}{
		{0.45, -1, LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle, LeftHeel, LeftFootIndex},
		{0.55, 1, RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle, RightHeel, RightFootIndex},
	} {
		shoulderX, shoulderY := side.x+leanShift, 0.55
		wristX, wristY := shoulderX, shoulderY-chord
		elbowX := shoulderX + side.dir*0.25*math.Cos(rad/2)
		elbowY := shoulderY - chord/2

		landmarks = append(landmarks,
			g.landmark(side.shoulder, shoulderX, shoulderY),
			g.landmark(side.elbow, elbowX, elbowY),
			g.landmark(side.wrist, wristX, wristY),
			g.landmark(side.hip, side.x, 0.80),
			g.landmark(side.knee, side.x, 1.0),
			g.landmark(side.ankle, side.x, 1.2),
			g.landmark(side.heel, side.x-0.03, 1.22),
			g.landmark(side.toe, side.x+0.05, 1.22),
		)
	}
	landmarks = append(landmarks, g.landmark(Nose, 0.5+leanShift, 0.42))

	return NewFrame(ts, landmarks...)
}

// PushUpFrame builds one push-up frame in side view with the given elbow
// angle (degrees, shoulder-elbow-wrist). The wrists are planted and the
// shoulders rise with elbow extension; the hips sit exactly on the
// shoulder-ankle line, offset downward by hipSag.
func (g *SyntheticGenerator) PushUpFrame(elbowAngle, hipSag float64) Frame {
	ts := g.nextTimestamp()
	rad := elbowAngle * math.Pi / 180
	chord := 2 * 0.20 * math.Sin(rad/2)

	wristX, wristY := 0.28, 0.92
	shoulderX, shoulderY := wristX, wristY-chord
	elbowX := wristX + 0.20*math.Cos(rad/2)
	elbowY := wristY - chord/2
	ankleX, ankleY := 0.85, 0.90
	hipX := shoulderX + 0.5*(ankleX-shoulderX)
	hipY := shoulderY + 0.5*(ankleY-shoulderY) + hipSag
	kneeX := shoulderX + 0.75*(ankleX-shoulderX)
	kneeY := shoulderY + 0.75*(ankleY-shoulderY)
	// nose extends the shoulder-ankle line past the shoulders so the
	// neck holds neutral
	noseX := shoulderX + 0.25*(shoulderX-ankleX)
	noseY := shoulderY + 0.25*(shoulderY-ankleY)

	landmarks := make([]Landmark, 0, len(AllLandmarkIDs))
	for _, side := range []struct {
		shoulder LandmarkID
		elbow    LandmarkID
		wrist    LandmarkID
		hip      LandmarkID
		knee     LandmarkID
		ankle    LandmarkID
		heel     LandmarkID
		toe      LandmarkID
	}{
		{LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle, LeftHeel, LeftFootIndex},
		{RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle, RightHeel, RightFootIndex},
	} {
		landmarks = append(landmarks,
			g.landmark(side.shoulder, shoulderX, shoulderY),
			g.landmark(side.elbow, elbowX, elbowY),
			g.landmark(side.wrist, wristX, wristY),
			g.landmark(side.hip, hipX, hipY),
			g.landmark(side.knee, kneeX, kneeY),
			g.landmark(side.ankle, ankleX, ankleY),
			g.landmark(side.heel, ankleX+0.02, ankleY+0.02),
			g.landmark(side.toe, ankleX+0.08, ankleY+0.02),
		)
	}
	landmarks = append(landmarks, g.landmark(Nose, noseX, noseY))

	return NewFrame(ts, landmarks...)
}

// rampAngles produces a down-and-up angle trajectory from top to bottom
// and back, followed by hold frames at the top so phase transitions
// settle.
func rampAngles(top, bottom float64, rampFrames, holdFrames int) []float64 {
	half := rampFrames / 2
	if half < 1 {
		half = 1
	}
	angles := make([]float64, 0, rampFrames+holdFrames)
	step := (top - bottom) / float64(half)
	for i := 0; i < half; i++ {
		angles = append(angles, top-step*float64(i+1))
	}
	for i := half - 2; i >= 0; i-- {
		angles = append(angles, top-step*float64(i+1))
	}
	angles = append(angles, top)
	for i := 0; i < holdFrames; i++ {
		angles = append(angles, top)
	}
	return angles
}

// SquatReps generates the given number of squat reps. Each rep ramps
// the knee angle from standing to depth and back, then holds standing
// so the rep registers.
func (g *SyntheticGenerator) SquatReps(reps int, flaw SquatFlaw) []Frame {
	top, bottom := 172.0, 88.0
	if flaw == SquatFlawShallow {
		bottom = 125
	}

	var frames []Frame
	// settle frames before the first descent
	for i := 0; i < 5; i++ {
		frames = append(frames, g.SquatFrame(top, 0))
	}
	for r := 0; r < reps; r++ {
		for _, angle := range rampAngles(top, bottom, 40, 10) {
			shift := 0.0
			if flaw == SquatFlawKneeForward && angle < 140 {
				shift = 0.10
			}
			frames = append(frames, g.SquatFrame(angle, shift))
		}
	}
	return frames
}

// CurlReps generates the given number of bicep curl reps.
func (g *SyntheticGenerator) CurlReps(reps int, flaw CurlFlaw) []Frame {
	top, bottom := 168.0, 48.0
	if flaw == CurlFlawPartial {
		bottom = 110
	}

	var frames []Frame
	for i := 0; i < 5; i++ {
		frames = append(frames, g.CurlFrame(top))
	}
	for r := 0; r < reps; r++ {
		for _, angle := range rampAngles(top, bottom, 40, 10) {
			frames = append(frames, g.CurlFrame(angle))
		}
	}
	return frames
}

// RaiseReps generates the given number of lateral raise reps. The raise
// angle ramps from arms-at-sides to shoulder height and back; the phase
// trajectory is inverted, so the rest angle plays the "top" role.
func (g *SyntheticGenerator) RaiseReps(reps int, flaw RaiseFlaw) []Frame {
	rest, peak := 15.0, 90.0

	var frames []Frame
	for i := 0; i < 5; i++ {
		frames = append(frames, g.RaiseFrame(rest, 0))
	}
	for r := 0; r < reps; r++ {
		for _, angle := range rampAngles(rest, peak, 40, 10) {
			shift := 0.0
			if flaw == RaiseFlawSway {
				shift = 0.10
			}
			frames = append(frames, g.RaiseFrame(angle, shift))
		}
	}
	return frames
}

// PressReps generates the given number of shoulder press reps, rack
// position to lockout and back.
func (g *SyntheticGenerator) PressReps(reps int, flaw PressFlaw) []Frame {
	rack, lockout := 75.0, 170.0

	var frames []Frame
	for i := 0; i < 5; i++ {
		frames = append(frames, g.PressFrame(rack, 0))
	}
	for r := 0; r < reps; r++ {
		for _, angle := range rampAngles(rack, lockout, 40, 10) {
			lean := 0.0
			if flaw == PressFlawArch {
				lean = 0.10
			}
			frames = append(frames, g.PressFrame(angle, lean))
		}
	}
	return frames
}

// PushUpReps generates the given number of push-up reps, plank to chest
// depth and back.
func (g *SyntheticGenerator) PushUpReps(reps int, flaw PushUpFlaw) []Frame {
	top, bottom := 170.0, 75.0

	var frames []Frame
	for i := 0; i < 5; i++ {
		frames = append(frames, g.PushUpFrame(top, 0))
	}
	for r := 0; r < reps; r++ {
		for _, angle := range rampAngles(top, bottom, 40, 10) {
			sag := 0.0
			if flaw == PushUpFlawSag {
				sag = 0.06
			}
			frames = append(frames, g.PushUpFrame(angle, sag))
		}
	}
	return frames
}

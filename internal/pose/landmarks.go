// Package pose defines the body-landmark data model consumed by the
// form-analysis engine. Frames are produced by an external pose-estimation
// component; this package owns only their in-memory representation and the
// JSONL log format used by the replay tooling.
package pose

// LandmarkID identifies one tracked anatomical point.
type LandmarkID string

const (
	Nose           LandmarkID = "nose"
	LeftShoulder   LandmarkID = "left_shoulder"
	RightShoulder  LandmarkID = "right_shoulder"
	LeftElbow      LandmarkID = "left_elbow"
	RightElbow     LandmarkID = "right_elbow"
	LeftWrist      LandmarkID = "left_wrist"
	RightWrist     LandmarkID = "right_wrist"
	LeftHip        LandmarkID = "left_hip"
	RightHip       LandmarkID = "right_hip"
	LeftKnee       LandmarkID = "left_knee"
	RightKnee      LandmarkID = "right_knee"
	LeftAnkle      LandmarkID = "left_ankle"
	RightAnkle     LandmarkID = "right_ankle"
	LeftHeel       LandmarkID = "left_heel"
	RightHeel      LandmarkID = "right_heel"
	LeftFootIndex  LandmarkID = "left_foot_index"
	RightFootIndex LandmarkID = "right_foot_index"
)

// AllLandmarkIDs lists the full landmark vocabulary in a stable order.
var AllLandmarkIDs = []LandmarkID{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

// Side identifies which half of the body a landmark belongs to.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideCenter Side = "center"
)

// Side returns which half of the body the landmark belongs to.
func (id LandmarkID) Side() Side {
	switch {
	case len(id) > 5 && id[:5] == "left_":
		return SideLeft
	case len(id) > 6 && id[:6] == "right_":
		return SideRight
	default:
		return SideCenter
	}
}

// Valid reports whether the identifier is part of the known vocabulary.
func (id LandmarkID) Valid() bool {
	for _, known := range AllLandmarkIDs {
		if id == known {
			return true
		}
	}
	return false
}

// Landmark is one tracked anatomical point. X and Y are normalised to the
// camera frame ([0,1], Y increasing downward as delivered by the pose
// estimator); Z is relative depth. Visibility is the estimator's confidence
// in [0,1]. Landmarks are immutable once produced.
type Landmark struct {
	ID         LandmarkID `json:"id"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Z          float64    `json:"z"`
	Visibility float64    `json:"visibility"`
}

package pose

// Frame is one timestamped set of landmarks delivered by the pose source.
// The engine owns a Frame only for the duration of one evaluation call; no
// frame history is retained beyond filter state.
type Frame struct {
	// TimestampMs is milliseconds since session start, monotonically
	// increasing within a session.
	TimestampMs int64 `json:"timestamp_ms"`

	Landmarks map[LandmarkID]Landmark `json:"landmarks"`
}

// NewFrame builds a Frame from a list of landmarks.
func NewFrame(tsMs int64, landmarks ...Landmark) Frame {
	m := make(map[LandmarkID]Landmark, len(landmarks))
	for _, lm := range landmarks {
		m[lm.ID] = lm
	}
	return Frame{TimestampMs: tsMs, Landmarks: m}
}

// Get returns the named landmark and whether it is present in the frame.
func (f Frame) Get(id LandmarkID) (Landmark, bool) {
	lm, ok := f.Landmarks[id]
	return lm, ok
}

// Visible reports whether every named landmark is present with visibility
// at or above minVisibility. Missing landmarks count as not visible; this
// is the null-propagation path for malformed frames.
func (f Frame) Visible(minVisibility float64, ids ...LandmarkID) bool {
	for _, id := range ids {
		lm, ok := f.Landmarks[id]
		if !ok || lm.Visibility < minVisibility {
			return false
		}
	}
	return true
}

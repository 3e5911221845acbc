package engine

// FrameEvaluationResult is the engine's output for one evaluated frame.
// It is consumed by the UI overlay and the feedback manager and is not
// persisted individually.
type FrameEvaluationResult struct {
	TimestampMs int64         `json:"timestamp_ms"`
	Score       float64       `json:"score"` // always in [0,100]
	Level       FeedbackLevel `json:"level"`
	Phase       Phase         `json:"phase"`
	Issues      []FormIssue   `json:"issues,omitempty"`

	// Angles holds the joint angles computed this frame, keyed by signal
	// name (e.g. "left_knee", "knee").
	Angles map[string]float64 `json:"angles,omitempty"`

	// CompletedRep is set on the single frame where the phase machine
	// closed a full cycle (up → top).
	CompletedRep bool `json:"completed_rep,omitempty"`

	// RepCount is the number of reps completed so far this session,
	// including the one completed on this frame.
	RepCount int `json:"rep_count"`
}

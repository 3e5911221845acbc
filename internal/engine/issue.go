package engine

// IssuePriority orders detected form issues for feedback delivery.
type IssuePriority string

const (
	PriorityCritical IssuePriority = "critical"
	PriorityHigh     IssuePriority = "high"
	PriorityMedium   IssuePriority = "medium"
	PriorityLow      IssuePriority = "low"
)

// Rank returns a comparable weight for the priority; higher is more urgent.
func (p IssuePriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority maps a priority name to an IssuePriority, defaulting to
// medium for unknown names.
func ParsePriority(s string) IssuePriority {
	switch s {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// FormIssue describes one detected form problem in a frame. Issues are
// immutable values produced fresh each frame and never mutated.
type FormIssue struct {
	Type       string        `json:"type"`
	Message    string        `json:"message"`
	Priority   IssuePriority `json:"priority"`
	Suggestion string        `json:"suggestion,omitempty"`
	BodyPart   string        `json:"body_part,omitempty"`
	Current    float64       `json:"current"`
	Target     float64       `json:"target"`

	// Deduction is the number of points this issue removed from the
	// 100-point frame budget (criterion shortfall × criterion weight).
	Deduction float64 `json:"deduction"`
}

// FeedbackLevel buckets an overall frame score for display.
type FeedbackLevel string

const (
	LevelExcellent        FeedbackLevel = "excellent"
	LevelGood             FeedbackLevel = "good"
	LevelFair             FeedbackLevel = "fair"
	LevelNeedsImprovement FeedbackLevel = "needs_improvement"
)

// Feedback level score buckets.
const (
	ScoreExcellentMin = 90.0
	ScoreGoodMin      = 70.0
	ScoreFairMin      = 50.0
)

// LevelForScore returns the FeedbackLevel bucket for a score in [0,100].
func LevelForScore(score float64) FeedbackLevel {
	switch {
	case score >= ScoreExcellentMin:
		return LevelExcellent
	case score >= ScoreGoodMin:
		return LevelGood
	case score >= ScoreFairMin:
		return LevelFair
	default:
		return LevelNeedsImprovement
	}
}

// Package session folds per-frame evaluation results and rep-completion
// events into rep, set, and session summaries. Summaries are immutable
// snapshots handed to persistence and analytics; nothing in this package
// retains a live reference to analyzer state.
package session

import (
	"github.com/formsense-data/form.report/internal/engine"
)

// IssueCount is one issue type with its occurrence count, for frequency
// rankings.
type IssueCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// RepSummary aggregates the frames of one completed repetition.
type RepSummary struct {
	RepNumber  int     `json:"rep_number"`
	Frames     int     `json:"frames"`
	AvgScore   float64 `json:"avg_score"`
	BestScore  float64 `json:"best_score"`
	WorstScore float64 `json:"worst_score"`
	DurationMs int64   `json:"duration_ms"`

	// TopIssues lists the most frequent issue types within the rep,
	// most frequent first (at most three).
	TopIssues []IssueCount `json:"top_issues,omitempty"`
}

// SetSummary aggregates the completed reps of one set.
type SetSummary struct {
	SetNumber     int          `json:"set_number"`
	Reps          []RepSummary `json:"reps"`
	TotalReps     int          `json:"total_reps"`
	AvgScore      float64      `json:"avg_score"`
	BestRepScore  float64      `json:"best_rep_score"`
	WorstRepScore float64      `json:"worst_rep_score"`
}

// SessionSummary is the final aggregate for one exercise session.
type SessionSummary struct {
	SessionID    string              `json:"session_id"`
	ExerciseType engine.ExerciseType `json:"exercise_type"`
	StartedAtMs  int64               `json:"started_at_ms"` // Unix millis
	EndedAtMs    int64               `json:"ended_at_ms"`   // Unix millis

	Sets      []SetSummary `json:"sets"`
	TotalReps int          `json:"total_reps"`

	AvgScore       float64 `json:"avg_score"`
	MedianRepScore float64 `json:"median_rep_score"`
	BestRepScore   float64 `json:"best_rep_score"`
	WorstRepScore  float64 `json:"worst_rep_score"`

	// IssueFrequency ranks every issue type seen this session, most
	// frequent first.
	IssueFrequency []IssueCount `json:"issue_frequency,omitempty"`
}

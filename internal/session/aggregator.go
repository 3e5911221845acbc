package session

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/formsense-data/form.report/internal/engine"
)

// Aggregator builds summaries incrementally as frames are evaluated and
// phases complete. One Aggregator is scoped to one session, like the
// analyzer that feeds it.
type Aggregator struct {
	sessionID   string
	exercise    engine.ExerciseType
	startedAtMs int64

	// current rep accumulation
	repFrames   int
	repScoreSum float64
	repBest     float64
	repWorst    float64
	repStartTs  int64
	repLastTs   int64
	repIssues   map[string]int

	// completed state
	currentSet   []RepSummary
	sets         []SetSummary
	repCount     int
	issueCounts  map[string]int
	allRepScores []float64
}

// NewAggregator creates an Aggregator for one exercise session, stamped
// with a fresh session ID and the current wall-clock start time.
func NewAggregator(exercise engine.ExerciseType) *Aggregator {
	return &Aggregator{
		sessionID:   uuid.NewString(),
		exercise:    exercise,
		startedAtMs: time.Now().UnixMilli(),
		repIssues:   make(map[string]int),
		issueCounts: make(map[string]int),
	}
}

// SessionID returns the session's identifier.
func (ag *Aggregator) SessionID() string { return ag.sessionID }

// Observe folds one frame result into the current rep. When the result
// carries the completed-rep flag the rep is closed and appended to the
// current set.
func (ag *Aggregator) Observe(result engine.FrameEvaluationResult) {
	if ag.repFrames == 0 {
		ag.repStartTs = result.TimestampMs
		ag.repBest = result.Score
		ag.repWorst = result.Score
	}
	ag.repFrames++
	ag.repScoreSum += result.Score
	ag.repLastTs = result.TimestampMs
	if result.Score > ag.repBest {
		ag.repBest = result.Score
	}
	if result.Score < ag.repWorst {
		ag.repWorst = result.Score
	}
	for _, issue := range result.Issues {
		ag.repIssues[issue.Type]++
		ag.issueCounts[issue.Type]++
	}

	if result.CompletedRep {
		ag.closeRep()
	}
}

func (ag *Aggregator) closeRep() {
	if ag.repFrames == 0 {
		return
	}
	ag.repCount++
	avg := ag.repScoreSum / float64(ag.repFrames)
	rep := RepSummary{
		RepNumber:  ag.repCount,
		Frames:     ag.repFrames,
		AvgScore:   avg,
		BestScore:  ag.repBest,
		WorstScore: ag.repWorst,
		DurationMs: ag.repLastTs - ag.repStartTs,
		TopIssues:  topIssues(ag.repIssues, 3),
	}
	ag.currentSet = append(ag.currentSet, rep)
	ag.allRepScores = append(ag.allRepScores, avg)

	ag.repFrames = 0
	ag.repScoreSum = 0
	ag.repIssues = make(map[string]int)
}

// EndSet closes the current set. Frames of an in-progress, never-completed
// rep are discarded; only completed reps count. A set with no completed
// reps is dropped.
func (ag *Aggregator) EndSet() {
	ag.repFrames = 0
	ag.repScoreSum = 0
	ag.repIssues = make(map[string]int)

	if len(ag.currentSet) == 0 {
		return
	}
	set := SetSummary{
		SetNumber: len(ag.sets) + 1,
		Reps:      ag.currentSet,
		TotalReps: len(ag.currentSet),
	}
	scores := make([]float64, len(ag.currentSet))
	best, worst := ag.currentSet[0].AvgScore, ag.currentSet[0].AvgScore
	for i, rep := range ag.currentSet {
		scores[i] = rep.AvgScore
		if rep.AvgScore > best {
			best = rep.AvgScore
		}
		if rep.AvgScore < worst {
			worst = rep.AvgScore
		}
	}
	set.AvgScore = stat.Mean(scores, nil)
	set.BestRepScore = best
	set.WorstRepScore = worst
	ag.sets = append(ag.sets, set)
	ag.currentSet = nil
}

// Finalize ends the session (closing any open set) and returns the
// immutable session summary. The aggregator should not be reused after
// Finalize.
func (ag *Aggregator) Finalize() SessionSummary {
	ag.EndSet()

	summary := SessionSummary{
		SessionID:      ag.sessionID,
		ExerciseType:   ag.exercise,
		StartedAtMs:    ag.startedAtMs,
		EndedAtMs:      time.Now().UnixMilli(),
		Sets:           ag.sets,
		TotalReps:      ag.repCount,
		IssueFrequency: topIssues(ag.issueCounts, len(ag.issueCounts)),
	}

	if len(ag.allRepScores) > 0 {
		scores := make([]float64, len(ag.allRepScores))
		copy(scores, ag.allRepScores)
		sort.Float64s(scores)
		summary.AvgScore = stat.Mean(scores, nil)
		summary.MedianRepScore = stat.Quantile(0.5, stat.Empirical, scores, nil)
		summary.WorstRepScore = scores[0]
		summary.BestRepScore = scores[len(scores)-1]
	}

	return summary
}

// topIssues ranks a count map, highest count first, ties broken by type
// name for determinism.
func topIssues(counts map[string]int, n int) []IssueCount {
	out := make([]IssueCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, IssueCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

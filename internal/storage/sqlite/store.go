// Package sqlite persists finished workout sessions so they can be
// reviewed, charted, and compared across days.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/formsense-data/form.report/internal/engine"
	"github.com/formsense-data/form.report/internal/session"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the session database at path and
// brings its schema to the latest embedded migration version.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(migrationsFS); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// SaveSession writes a finished session with all of its reps and issue
// counts in one transaction.
func (db *DB) SaveSession(summary *session.SessionSummary) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (
			id, exercise, started_at_ms, ended_at_ms, total_reps,
			avg_score, median_rep_score, best_rep_score, worst_rep_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.SessionID,
		string(summary.ExerciseType),
		summary.StartedAtMs,
		summary.EndedAtMs,
		summary.TotalReps,
		summary.AvgScore,
		summary.MedianRepScore,
		summary.BestRepScore,
		summary.WorstRepScore,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for _, set := range summary.Sets {
		for _, rep := range set.Reps {
			_, err = tx.Exec(
				`INSERT INTO reps (
					session_id, set_number, rep_number, frames,
					avg_score, best_score, worst_score, duration_ms
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				summary.SessionID,
				set.SetNumber,
				rep.RepNumber,
				rep.Frames,
				rep.AvgScore,
				rep.BestScore,
				rep.WorstScore,
				rep.DurationMs,
			)
			if err != nil {
				return fmt.Errorf("failed to insert rep %d: %w", rep.RepNumber, err)
			}
		}
	}

	for _, issue := range summary.IssueFrequency {
		_, err = tx.Exec(
			`INSERT INTO session_issues (session_id, issue_type, count) VALUES (?, ?, ?)`,
			summary.SessionID, issue.Type, issue.Count,
		)
		if err != nil {
			return fmt.Errorf("failed to insert issue count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// GetSession reloads a stored session, reassembling sets from the rep
// rows. Per-rep top issues are not persisted and come back empty.
func (db *DB) GetSession(id string) (*session.SessionSummary, error) {
	var summary session.SessionSummary
	var exercise string

	err := db.QueryRow(
		`SELECT id, exercise, started_at_ms, ended_at_ms, total_reps,
			avg_score, median_rep_score, best_rep_score, worst_rep_score
		FROM sessions WHERE id = ?`, id,
	).Scan(
		&summary.SessionID,
		&exercise,
		&summary.StartedAtMs,
		&summary.EndedAtMs,
		&summary.TotalReps,
		&summary.AvgScore,
		&summary.MedianRepScore,
		&summary.BestRepScore,
		&summary.WorstRepScore,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	summary.ExerciseType = engine.ExerciseType(exercise)

	rows, err := db.Query(
		`SELECT set_number, rep_number, frames, avg_score, best_score, worst_score, duration_ms
		FROM reps WHERE session_id = ? ORDER BY set_number ASC, rep_number ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reps: %w", err)
	}
	defer rows.Close()

	setsByNumber := map[int]*session.SetSummary{}
	var setOrder []int
	for rows.Next() {
		var setNumber int
		var rep session.RepSummary
		if err := rows.Scan(
			&setNumber,
			&rep.RepNumber,
			&rep.Frames,
			&rep.AvgScore,
			&rep.BestScore,
			&rep.WorstScore,
			&rep.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rep: %w", err)
		}
		set, ok := setsByNumber[setNumber]
		if !ok {
			set = &session.SetSummary{SetNumber: setNumber}
			setsByNumber[setNumber] = set
			setOrder = append(setOrder, setNumber)
		}
		set.Reps = append(set.Reps, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reps: %w", err)
	}

	for _, n := range setOrder {
		set := setsByNumber[n]
		set.TotalReps = len(set.Reps)
		best, worst, sum := set.Reps[0].AvgScore, set.Reps[0].AvgScore, 0.0
		for _, rep := range set.Reps {
			sum += rep.AvgScore
			if rep.AvgScore > best {
				best = rep.AvgScore
			}
			if rep.AvgScore < worst {
				worst = rep.AvgScore
			}
		}
		set.AvgScore = sum / float64(len(set.Reps))
		set.BestRepScore = best
		set.WorstRepScore = worst
		summary.Sets = append(summary.Sets, *set)
	}

	issueRows, err := db.Query(
		`SELECT issue_type, count FROM session_issues
		WHERE session_id = ? ORDER BY count DESC, issue_type ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query issue counts: %w", err)
	}
	defer issueRows.Close()

	for issueRows.Next() {
		var ic session.IssueCount
		if err := issueRows.Scan(&ic.Type, &ic.Count); err != nil {
			return nil, fmt.Errorf("failed to scan issue count: %w", err)
		}
		summary.IssueFrequency = append(summary.IssueFrequency, ic)
	}
	if err := issueRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issue counts: %w", err)
	}

	return &summary, nil
}

// SessionRecord is the lightweight listing row for the sessions index.
type SessionRecord struct {
	SessionID    string  `json:"session_id"`
	ExerciseType string  `json:"exercise_type"`
	StartedAtMs  int64   `json:"started_at_ms"`
	EndedAtMs    int64   `json:"ended_at_ms"`
	TotalReps    int     `json:"total_reps"`
	AvgScore     float64 `json:"avg_score"`
}

// ListSessions returns the most recent sessions, newest first.
func (db *DB) ListSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT id, exercise, started_at_ms, ended_at_ms, total_reps, avg_score
		FROM sessions ORDER BY started_at_ms DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(
			&rec.SessionID,
			&rec.ExerciseType,
			&rec.StartedAtMs,
			&rec.EndedAtMs,
			&rec.TotalReps,
			&rec.AvgScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return records, nil
}

// DeleteSession removes a session and its dependent rows.
func (db *DB) DeleteSession(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reps WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete reps: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM session_issues WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete issue counts: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session not found")
	}

	return tx.Commit()
}

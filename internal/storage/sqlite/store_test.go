package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formsense-data/form.report/internal/engine"
	"github.com/formsense-data/form.report/internal/session"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSummary() *session.SessionSummary {
	return &session.SessionSummary{
		SessionID:      "11111111-2222-3333-4444-555555555555",
		ExerciseType:   engine.ExerciseSquat,
		StartedAtMs:    1000,
		EndedAtMs:      61000,
		TotalReps:      3,
		AvgScore:       86.5,
		MedianRepScore: 88,
		BestRepScore:   95,
		WorstRepScore:  76.5,
		Sets: []session.SetSummary{
			{
				SetNumber: 1,
				TotalReps: 2,
				AvgScore:  85.75,

				BestRepScore:  95,
				WorstRepScore: 76.5,
				Reps: []session.RepSummary{
					{RepNumber: 1, Frames: 40, AvgScore: 95, BestScore: 100, WorstScore: 90, DurationMs: 1300},
					{RepNumber: 2, Frames: 44, AvgScore: 76.5, BestScore: 92, WorstScore: 60, DurationMs: 1430},
				},
			},
			{
				SetNumber: 2,
				TotalReps: 1,
				AvgScore:  88,

				BestRepScore:  88,
				WorstRepScore: 88,
				Reps: []session.RepSummary{
					{RepNumber: 3, Frames: 41, AvgScore: 88, BestScore: 97, WorstScore: 81, DurationMs: 1350},
				},
			},
		},
		IssueFrequency: []session.IssueCount{
			{Type: "squat_depth", Count: 12},
			{Type: "trunk_lean", Count: 4},
		},
	}
}

func TestSaveAndGetSession(t *testing.T) {
	db := testDB(t)
	want := sampleSummary()

	require.NoError(t, db.SaveSession(want))

	got, err := db.GetSession(want.SessionID)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("session round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetSession("no-such-session")
	assert.Error(t, err)
}

func TestListSessionsNewestFirst(t *testing.T) {
	db := testDB(t)

	older := sampleSummary()
	older.SessionID = "older"
	older.StartedAtMs = 1000
	require.NoError(t, db.SaveSession(older))

	newer := sampleSummary()
	newer.SessionID = "newer"
	newer.StartedAtMs = 2000
	require.NoError(t, db.SaveSession(newer))

	records, err := db.ListSessions(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].SessionID)
	assert.Equal(t, "older", records[1].SessionID)
	assert.Equal(t, string(engine.ExerciseSquat), records[0].ExerciseType)
}

func TestDeleteSession(t *testing.T) {
	db := testDB(t)
	summary := sampleSummary()
	require.NoError(t, db.SaveSession(summary))

	require.NoError(t, db.DeleteSession(summary.SessionID))

	_, err := db.GetSession(summary.SessionID)
	assert.Error(t, err)

	var repCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reps`).Scan(&repCount))
	assert.Zero(t, repCount)

	assert.Error(t, db.DeleteSession(summary.SessionID))
}

func TestSaveSessionDuplicateID(t *testing.T) {
	db := testDB(t)
	summary := sampleSummary()
	require.NoError(t, db.SaveSession(summary))
	assert.Error(t, db.SaveSession(summary))
}

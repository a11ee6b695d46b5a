package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/explorer/internal/nav"
)

func newTestStore(t *testing.T) *GoalStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewGoalStore(db)
	require.NoError(t, err)
	return store
}

func TestRecordAndListGoals(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordGoal(nav.GoalRecord{
		GoalID: "goal-1", TargetX: 0.5, TargetY: -0.5,
		Status: nav.GoalPending, SubmittedUnixNanos: 100,
	}))
	require.NoError(t, store.RecordGoal(nav.GoalRecord{
		GoalID: "goal-2", TargetX: 1.0, TargetY: 1.0,
		Status: nav.GoalPending, SubmittedUnixNanos: 200,
	}))

	goals, err := store.RecentGoals(10)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "goal-2", goals[0].GoalID, "newest submission first")
	assert.Equal(t, "goal-1", goals[1].GoalID)
	assert.Equal(t, 0.5, goals[1].TargetX)
}

func TestRecordGoalUpsertsStatus(t *testing.T) {
	store := newTestStore(t)

	rec := nav.GoalRecord{
		GoalID: "goal-1", TargetX: 1, TargetY: 2,
		Status: nav.GoalPending, SubmittedUnixNanos: 100,
	}
	require.NoError(t, store.RecordGoal(rec))

	rec.Status = nav.GoalSucceeded
	rec.ResolvedUnixNanos = 300
	rec.Detail = "reached pose"
	require.NoError(t, store.RecordGoal(rec))

	goals, err := store.RecentGoals(10)
	require.NoError(t, err)
	require.Len(t, goals, 1, "transitions update, not duplicate")
	assert.Equal(t, nav.GoalSucceeded, goals[0].Status)
	assert.Equal(t, int64(300), goals[0].ResolvedUnixNanos)
	assert.Equal(t, "reached pose", goals[0].Detail)
}

func TestRecentGoalsLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordGoal(nav.GoalRecord{
			GoalID:             string(rune('a' + i)),
			Status:             nav.GoalSucceeded,
			SubmittedUnixNanos: int64(i),
		}))
	}
	goals, err := store.RecentGoals(3)
	require.NoError(t, err)
	assert.Len(t, goals, 3)
}

func TestRecentGoalsEmpty(t *testing.T) {
	store := newTestStore(t)
	goals, err := store.RecentGoals(10)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

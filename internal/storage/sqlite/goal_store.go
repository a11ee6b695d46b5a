// Package sqlite persists navigation goal history. It is an adapter, not
// part of the decision loop: records flow one way, out of the controller,
// and nothing is read back at startup.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/explorer/internal/nav"
)

const goalSchema = `
	CREATE TABLE IF NOT EXISTS explore_goals (
		goal_id TEXT PRIMARY KEY,
		target_x REAL NOT NULL,
		target_y REAL NOT NULL,
		status TEXT NOT NULL,
		submitted_unix_nanos INTEGER NOT NULL,
		resolved_unix_nanos INTEGER NOT NULL DEFAULT 0,
		detail TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_explore_goals_submitted
		ON explore_goals(submitted_unix_nanos);
`

// GoalStore records goal lifecycle transitions. It implements nav.GoalSink.
type GoalStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the goal database at path and
// ensures the schema exists.
func Open(path string) (*GoalStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open goal database: %w", err)
	}
	s := &GoalStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewGoalStore wraps an existing database handle and ensures the schema
// exists. Used by tests with in-memory databases.
func NewGoalStore(db *sql.DB) (*GoalStore, error) {
	s := &GoalStore{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GoalStore) init() error {
	if _, err := s.db.Exec(goalSchema); err != nil {
		return fmt.Errorf("create goal schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *GoalStore) Close() error {
	return s.db.Close()
}

// RecordGoal upserts one goal record. Status transitions for the same
// goal ID update the existing row in place, so the table holds the latest
// known state of every attempt.
func (s *GoalStore) RecordGoal(rec nav.GoalRecord) error {
	query := `
		INSERT INTO explore_goals (
			goal_id, target_x, target_y, status,
			submitted_unix_nanos, resolved_unix_nanos, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(goal_id) DO UPDATE SET
			status = excluded.status,
			resolved_unix_nanos = excluded.resolved_unix_nanos,
			detail = excluded.detail
	`
	_, err := s.db.Exec(query,
		rec.GoalID,
		rec.TargetX,
		rec.TargetY,
		string(rec.Status),
		rec.SubmittedUnixNanos,
		rec.ResolvedUnixNanos,
		rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("record goal %s: %w", rec.GoalID, err)
	}
	return nil
}

// RecentGoals returns up to limit goal records, newest submission first.
func (s *GoalStore) RecentGoals(limit int) ([]nav.GoalRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT goal_id, target_x, target_y, status,
			submitted_unix_nanos, resolved_unix_nanos, detail
		FROM explore_goals
		ORDER BY submitted_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent goals: %w", err)
	}
	defer rows.Close()

	var out []nav.GoalRecord
	for rows.Next() {
		var rec nav.GoalRecord
		var status string
		if err := rows.Scan(&rec.GoalID, &rec.TargetX, &rec.TargetY, &status,
			&rec.SubmittedUnixNanos, &rec.ResolvedUnixNanos, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan goal row: %w", err)
		}
		rec.Status = nav.GoalStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

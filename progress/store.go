// Package progress persists per-user requirement check-offs in SQLite.
// One row per (user, mission, requirement); checking twice is a no-op,
// unchecking removes the row.
package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pblhub/missiond/dbopen"
)

// Schema is applied on open. Timestamps are Unix milliseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS progress (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    mission_id     TEXT NOT NULL,
    requirement_id TEXT NOT NULL,
    checked_at     INTEGER NOT NULL,
    UNIQUE (user_id, mission_id, requirement_id)
);
CREATE INDEX IF NOT EXISTS idx_progress_user_mission ON progress(user_id, mission_id);
`

// Store wraps the progress database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and creates if needed) the progress database at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}
	return NewStore(db), nil
}

// NewStore creates a Store from an already-opened database connection.
// The schema must have been applied.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Check marks a requirement done for the user. Checking an already checked
// requirement keeps the original checked_at.
func (s *Store) Check(ctx context.Context, userID, missionID, requirementID string) error {
	_, err := dbopen.Exec(ctx, s.db,
		`INSERT INTO progress (id, user_id, mission_id, requirement_id, checked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, mission_id, requirement_id) DO NOTHING`,
		uuid.NewString(), userID, missionID, requirementID, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("progress: check: %w", err)
	}
	return nil
}

// Uncheck removes a check-off. Unchecking an absent row is not an error.
func (s *Store) Uncheck(ctx context.Context, userID, missionID, requirementID string) error {
	_, err := dbopen.Exec(ctx, s.db,
		`DELETE FROM progress WHERE user_id = ? AND mission_id = ? AND requirement_id = ?`,
		userID, missionID, requirementID,
	)
	if err != nil {
		return fmt.Errorf("progress: uncheck: %w", err)
	}
	return nil
}

// Completed returns the requirement IDs the user has checked off for one
// mission, oldest check first.
func (s *Store) Completed(ctx context.Context, userID, missionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT requirement_id FROM progress
		WHERE user_id = ? AND mission_id = ?
		ORDER BY checked_at, requirement_id`,
		userID, missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("progress: completed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("progress: completed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MissionCount is one mission's check-off tally for a user.
type MissionCount struct {
	MissionID string `json:"missionId"`
	Checked   int    `json:"checked"`
}

// Summary returns per-mission check-off counts for the user, ordered by
// mission ID.
func (s *Store) Summary(ctx context.Context, userID string) ([]MissionCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mission_id, COUNT(*) FROM progress
		WHERE user_id = ?
		GROUP BY mission_id
		ORDER BY mission_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("progress: summary: %w", err)
	}
	defer rows.Close()

	var counts []MissionCount
	for rows.Next() {
		var c MissionCount
		if err := rows.Scan(&c.MissionID, &c.Checked); err != nil {
			return nil, fmt.Errorf("progress: summary: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Reset removes every check-off the user has for one mission and reports
// how many rows were cleared.
func (s *Store) Reset(ctx context.Context, userID, missionID string) (int, error) {
	res, err := dbopen.Exec(ctx, s.db,
		`DELETE FROM progress WHERE user_id = ? AND mission_id = ?`,
		userID, missionID,
	)
	if err != nil {
		return 0, fmt.Errorf("progress: reset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("progress: reset: %w", err)
	}
	return int(n), nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/gymapp/internal/models"
)

// GetActiveRoutine returns the user's active routine, or nil.
func (db *DB) GetActiveRoutine(ctx context.Context, userID string) (*models.Routine, error) {
	var raw string
	err := db.conn.QueryRowContext(ctx, `SELECT routine FROM active_routines WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active routine: %w", err)
	}
	var r models.Routine
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decoding active routine: %w", err)
	}
	return &r, nil
}

// PutActiveRoutine stores r as the user's single active routine.
func (db *DB) PutActiveRoutine(ctx context.Context, userID string, r *models.Routine) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding routine: %w", err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO active_routines (user_id, routine, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET routine = excluded.routine, updated_at = excluded.updated_at`,
		userID, string(raw), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upserting active routine: %w", err)
	}
	return nil
}

// DeleteActiveRoutine removes the user's active routine.
func (db *DB) DeleteActiveRoutine(ctx context.Context, userID string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM active_routines WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting active routine: %w", err)
	}
	return res.RowsAffected()
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/gymapp/internal/models"
)

// GetActiveRoutine returns the user's active routine, or nil.
func (db *DB) GetActiveRoutine(ctx context.Context, userID string) (*models.Routine, error) {
	var raw []byte
	err := db.Pool.QueryRow(ctx, `SELECT routine FROM active_routines WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active routine: %w", err)
	}
	var r models.Routine
	if err := json.Unmarshal(raw, &r); err != nil {
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
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO active_routines (user_id, routine, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET routine = EXCLUDED.routine, updated_at = NOW()`,
		userID, string(raw))
	if err != nil {
		return fmt.Errorf("upserting active routine: %w", err)
	}
	return nil
}

// DeleteActiveRoutine removes the user's active routine.
func (db *DB) DeleteActiveRoutine(ctx context.Context, userID string) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM active_routines WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting active routine: %w", err)
	}
	return tag.RowsAffected(), nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/gymapp/internal/models"
)

func scanWorkout(row pgx.Row) (*models.WorkoutRecord, error) {
	var (
		rec models.WorkoutRecord
		raw []byte
	)
	if err := row.Scan(&rec.ID, &rec.Date, &raw); err != nil {
		return nil, err
	}
	rec.Date = rec.Date.UTC()
	if err := json.Unmarshal(raw, &rec.Exercises); err != nil {
		return nil, fmt.Errorf("decoding exercises of workout %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// ListWorkouts returns a user's workouts, newest first.
func (db *DB) ListWorkouts(ctx context.Context, userID string) ([]models.WorkoutRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, date, exercises FROM workouts WHERE user_id = $1 ORDER BY date DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRecord
	for rows.Next() {
		rec, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// GetWorkout returns one workout, or nil.
func (db *DB) GetWorkout(ctx context.Context, userID string, id models.RecordID) (*models.WorkoutRecord, error) {
	rec, err := scanWorkout(db.Pool.QueryRow(ctx,
		`SELECT id, date, exercises FROM workouts WHERE user_id = $1 AND id = $2`,
		userID, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout %s: %w", id, err)
	}
	return rec, nil
}

// PutWorkout inserts or replaces a workout by (user, id).
func (db *DB) PutWorkout(ctx context.Context, userID string, rec models.WorkoutRecord) error {
	exercises, err := json.Marshal(rec.Exercises)
	if err != nil {
		return fmt.Errorf("encoding exercises: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workouts (user_id, id, date, exercises, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id, id) DO UPDATE
			SET date = EXCLUDED.date, exercises = EXCLUDED.exercises, updated_at = NOW()`,
		userID, string(rec.ID), rec.Date.UTC(), string(exercises))
	if err != nil {
		return fmt.Errorf("upserting workout: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout and reports the rows removed.
func (db *DB) DeleteWorkout(ctx context.Context, userID string, id models.RecordID) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE user_id = $1 AND id = $2`, userID, string(id))
	if err != nil {
		return 0, fmt.Errorf("deleting workout %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

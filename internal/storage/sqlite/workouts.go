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

func scanWorkout(row rowScanner) (*models.WorkoutRecord, error) {
	var (
		rec       models.WorkoutRecord
		date, raw string
	)
	if err := row.Scan(&rec.ID, &date, &raw); err != nil {
		return nil, err
	}
	t, err := parseTime(date)
	if err != nil {
		return nil, err
	}
	rec.Date = t
	if err := json.Unmarshal([]byte(raw), &rec.Exercises); err != nil {
		return nil, fmt.Errorf("decoding exercises of workout %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// ListWorkouts returns a user's workouts, newest first.
func (db *DB) ListWorkouts(ctx context.Context, userID string) ([]models.WorkoutRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, date, exercises FROM workouts WHERE user_id = ? ORDER BY date DESC, id DESC`,
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
	rec, err := scanWorkout(db.conn.QueryRowContext(ctx,
		`SELECT id, date, exercises FROM workouts WHERE user_id = ? AND id = ?`,
		userID, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO workouts (user_id, id, date, exercises, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, id) DO UPDATE
			SET date = excluded.date, exercises = excluded.exercises, updated_at = excluded.updated_at`,
		userID, string(rec.ID), formatTime(rec.Date), string(exercises), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upserting workout: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout and reports the rows removed.
func (db *DB) DeleteWorkout(ctx context.Context, userID string, id models.RecordID) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM workouts WHERE user_id = ? AND id = ?`, userID, string(id))
	if err != nil {
		return 0, fmt.Errorf("deleting workout %s: %w", id, err)
	}
	return res.RowsAffected()
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/claude/gymapp/internal/models"
)

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error) {
	created := log.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO import_logs (user_id, created_at, source, status, sessions_received,
		 workouts_saved, sets_received, duration_ms, error_message)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		log.UserID, formatTime(created), log.Source, log.Status, log.SessionsReceived,
		log.WorkoutsSaved, log.SetsReceived, log.DurationMs, log.ErrorMessage)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return res.LastInsertId()
}

// UpdateImportLog records the outcome of a running import.
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log models.ImportLog) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE import_logs SET
		 user_id = ?, status = ?, sessions_received = ?, workouts_saved = ?,
		 sets_received = ?, duration_ms = ?, error_message = ?
		 WHERE id = ?`,
		log.UserID, log.Status, log.SessionsReceived, log.WorkoutsSaved,
		log.SetsReceived, log.DurationMs, log.ErrorMessage, id)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs.
func (db *DB) QueryImportLogs(ctx context.Context, limit int) ([]models.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, created_at, source, status, sessions_received, workouts_saved,
		 sets_received, duration_ms, error_message
		 FROM import_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []models.ImportLog
	for rows.Next() {
		var (
			l        models.ImportLog
			created  string
			duration sql.NullInt64
			errMsg   sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.UserID, &created, &l.Source, &l.Status,
			&l.SessionsReceived, &l.WorkoutsSaved, &l.SetsReceived, &duration, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		if l.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if duration.Valid {
			d := int(duration.Int64)
			l.DurationMs = &d
		}
		if errMsg.Valid {
			l.ErrorMessage = &errMsg.String
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

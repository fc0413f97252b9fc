package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claude/gymapp/internal/models"
)

const userColumns = `id, name, avatar, pin, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u       models.User
		created string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Avatar, &u.PIN, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	u.HasPIN = u.PIN != ""
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		result = append(result, *u)
	}
	return result, rows.Err()
}

// GetUser returns the user with id, or nil.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %s: %w", id, err)
	}
	return u, nil
}

// FindUserByName matches name case-insensitively (ASCII folding).
func (db *DB) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE name = ? COLLATE NOCASE`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by name: %w", err)
	}
	return u, nil
}

// CreateUser inserts a user.
func (db *DB) CreateUser(ctx context.Context, u models.User) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, avatar, pin, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Avatar, u.PIN, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// DeleteUser removes a user together with their workouts, active routine
// and session in one transaction.
func (db *DB) DeleteUser(ctx context.Context, id string) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM workouts WHERE user_id = ?`,
		`DELETE FROM active_routines WHERE user_id = ?`,
		`DELETE FROM sessions WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return 0, fmt.Errorf("deleting data of user %s: %w", id, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting user %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting user %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing user delete: %w", err)
	}
	return n, nil
}

// CurrentSessionUser returns the signed-in user id, or "".
func (db *DB) CurrentSessionUser(ctx context.Context) (string, error) {
	var id string
	err := db.conn.QueryRowContext(ctx, `SELECT user_id FROM sessions WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying session: %w", err)
	}
	return id, nil
}

// SetSession replaces the current session.
func (db *DB) SetSession(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, started_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET user_id = excluded.user_id, started_at = excluded.started_at`,
		userID, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("setting session: %w", err)
	}
	return nil
}

// ClearSession removes the current session.
func (db *DB) ClearSession(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/claude/gymapp/internal/models"
)

const userColumns = `id, name, avatar, pin, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Avatar, &u.PIN, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.HasPIN = u.PIN != ""
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, name`)
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
	u, err := scanUser(db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %s: %w", id, err)
	}
	return u, nil
}

// FindUserByName matches name case-insensitively.
func (db *DB) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	u, err := scanUser(db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(name) = LOWER($1)`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by name: %w", err)
	}
	return u, nil
}

// CreateUser inserts a user.
func (db *DB) CreateUser(ctx context.Context, u models.User) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO users (id, name, avatar, pin, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Avatar, u.PIN, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// DeleteUser removes a user together with their workouts, active routine
// and session in one transaction.
func (db *DB) DeleteUser(ctx context.Context, id string) (int64, error) {
	var n int64
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for _, q := range []string{
			`DELETE FROM workouts WHERE user_id = $1`,
			`DELETE FROM active_routines WHERE user_id = $1`,
			`DELETE FROM sessions WHERE user_id = $1`,
		} {
			if _, err := tx.Exec(ctx, q, id); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deleting user %s: %w", id, err)
	}
	return n, nil
}

// CurrentSessionUser returns the signed-in user id, or "".
func (db *DB) CurrentSessionUser(ctx context.Context) (string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `SELECT user_id FROM sessions WHERE id = 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying session: %w", err)
	}
	return id, nil
}

// SetSession replaces the current session.
func (db *DB) SetSession(ctx context.Context, userID string) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, started_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, started_at = EXCLUDED.started_at`,
		userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("setting session: %w", err)
	}
	return nil
}

// ClearSession removes the current session.
func (db *DB) ClearSession(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

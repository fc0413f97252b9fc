package storage

import (
	"context"
	"fmt"

	"github.com/claude/gymapp/internal/config"
	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/session"
	"github.com/claude/gymapp/internal/storage/sqlite"
	"github.com/claude/gymapp/internal/workoutlog"
)

// Backend is everything the services persist. Both *DB and *sqlite.DB
// implement it.
type Backend interface {
	routine.Store
	workoutlog.Store
	session.Store

	InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log models.ImportLog) error
	QueryImportLogs(ctx context.Context, limit int) ([]models.ImportLog, error)

	Close() error
}

var (
	_ Backend = (*DB)(nil)
	_ Backend = (*sqlite.DB)(nil)
)

// Open migrates and connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		return New(ctx, dsn)
	case config.DriverSQLite, "":
		return sqlite.Open(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Package ingest holds what every import source shares: the result shape
// and import-log bookkeeping.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/gymapp/internal/models"
)

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	WorkoutsSaved    int `json:"workouts_saved"`
	SetsReceived     int `json:"sets_received"`
	WarmupsDropped   int `json:"warmups_dropped,omitempty"`

	UsersCreated     int `json:"users_created,omitempty"`
	UsersReused      int `json:"users_reused,omitempty"`
	RoutinesImported int `json:"routines_imported,omitempty"`

	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
	DryRun  bool     `json:"dry_run,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Failf records a per-item failure without aborting the import.
func (r *Result) Failf(format string, args ...any) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// WorkoutSaver stores one workout for the user resolved from ctx.
// *workoutlog.Log implements it.
type WorkoutSaver interface {
	Save(ctx context.Context, rec models.WorkoutRecord) (*models.WorkoutRecord, error)
}

// LogStore persists import logs. Both storage backends implement it.
type LogStore interface {
	InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log models.ImportLog) error
}

// Track records an import run in logs around fn: a running entry first,
// then the outcome. A nil logs store just runs fn. Bookkeeping failures
// are returned only when fn itself succeeded.
func Track(ctx context.Context, logs LogStore, source, userID string, fn func() (*Result, error)) (*Result, error) {
	if logs == nil {
		return fn()
	}
	start := time.Now()
	id, err := logs.InsertImportLog(ctx, models.ImportLog{
		UserID:    userID,
		CreatedAt: start,
		Source:    source,
		Status:    models.ImportRunning,
	})
	if err != nil {
		return nil, err
	}

	res, runErr := fn()

	entry := models.ImportLog{UserID: userID, Status: models.ImportSuccess}
	dur := int(time.Since(start).Milliseconds())
	entry.DurationMs = &dur
	if res != nil {
		entry.SessionsReceived = res.SessionsReceived
		entry.WorkoutsSaved = res.WorkoutsSaved
		entry.SetsReceived = res.SetsReceived
	}
	if runErr != nil {
		msg := runErr.Error()
		entry.Status = models.ImportError
		entry.ErrorMessage = &msg
	}
	if err := logs.UpdateImportLog(ctx, id, entry); err != nil && runErr == nil {
		return res, err
	}
	return res, runErr
}

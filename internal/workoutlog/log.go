// Package workoutlog stores each user's logged training sessions.
package workoutlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/gymapp/internal/metrics"
	"github.com/claude/gymapp/internal/models"
)

// Store persists workout records per user. List is ordered by date, newest
// first. Get returns (nil, nil) when the record does not exist.
type Store interface {
	ListWorkouts(ctx context.Context, userID string) ([]models.WorkoutRecord, error)
	GetWorkout(ctx context.Context, userID string, id models.RecordID) (*models.WorkoutRecord, error)
	PutWorkout(ctx context.Context, userID string, rec models.WorkoutRecord) error
	DeleteWorkout(ctx context.Context, userID string, id models.RecordID) (int64, error)
}

// UserResolver identifies the current user. An empty id means nobody is
// signed in.
type UserResolver interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Log is the current user's workout log.
type Log struct {
	store Store
	users UserResolver
	log   *slog.Logger
	now   func() time.Time
}

// New creates a Log.
func New(store Store, users UserResolver, log *slog.Logger) *Log {
	return &Log{store: store, users: users, log: log, now: time.Now}
}

// Save creates or replaces a record. A missing identifier is derived from
// the current time and a missing date defaults to now.
func (l *Log) Save(ctx context.Context, rec models.WorkoutRecord) (*models.WorkoutRecord, error) {
	uid, err := l.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	now := l.now().UTC()
	if rec.ID == "" {
		rec.ID = models.NewRecordID(now)
	}
	if rec.Date.IsZero() {
		rec.Date = now
	}
	if rec.Exercises == nil {
		rec.Exercises = []models.LoggedExercise{}
	}
	if err := l.store.PutWorkout(ctx, uid, rec); err != nil {
		return nil, fmt.Errorf("saving workout %s: %w", rec.ID, err)
	}
	metrics.WorkoutsSavedTotal.Inc()
	return &rec, nil
}

// List returns the current user's records, newest first.
func (l *Log) List(ctx context.Context) ([]models.WorkoutRecord, error) {
	uid, err := l.users.CurrentUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	if uid == "" {
		return []models.WorkoutRecord{}, nil
	}
	recs, err := l.store.ListWorkouts(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	if recs == nil {
		recs = []models.WorkoutRecord{}
	}
	return recs, nil
}

// Get returns one record, or nil when it does not exist.
func (l *Log) Get(ctx context.Context, id models.RecordID) (*models.WorkoutRecord, error) {
	uid, err := l.users.CurrentUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	if uid == "" {
		return nil, nil
	}
	rec, err := l.store.GetWorkout(ctx, uid, id)
	if err != nil {
		return nil, fmt.Errorf("loading workout %s: %w", id, err)
	}
	return rec, nil
}

// Update merges patch onto the stored record and saves it under the same
// identifier. It returns nil when the record does not exist.
func (l *Log) Update(ctx context.Context, id models.RecordID, patch models.WorkoutPatch) (*models.WorkoutRecord, error) {
	uid, err := l.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := l.store.GetWorkout(ctx, uid, id)
	if err != nil {
		return nil, fmt.Errorf("loading workout %s: %w", id, err)
	}
	if existing == nil {
		return nil, nil
	}
	merged := patch.Apply(*existing)
	if err := l.store.PutWorkout(ctx, uid, merged); err != nil {
		return nil, fmt.Errorf("updating workout %s: %w", id, err)
	}
	return &merged, nil
}

// Delete removes a record and reports how many were removed. Deleting an
// absent record is not an error.
func (l *Log) Delete(ctx context.Context, id models.RecordID) (int64, error) {
	uid, err := l.requireUser(ctx)
	if err != nil {
		return 0, err
	}
	n, err := l.store.DeleteWorkout(ctx, uid, id)
	if err != nil {
		return 0, fmt.Errorf("deleting workout %s: %w", id, err)
	}
	return n, nil
}

// Summary aggregates the current user's log.
func (l *Log) Summary(ctx context.Context) (*models.WorkoutSummary, error) {
	recs, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	s := Summarize(recs)
	return &s, nil
}

func (l *Log) requireUser(ctx context.Context) (string, error) {
	uid, err := l.users.CurrentUserID(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving current user: %w", err)
	}
	if uid == "" {
		return "", models.ErrNoCurrentUser
	}
	return uid, nil
}

package routine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/claude/gymapp/internal/metrics"
	"github.com/claude/gymapp/internal/models"
)

// ErrNoActiveRoutine is returned when an operation needs an active routine
// and the current user has none.
var ErrNoActiveRoutine = errors.New("no active routine")

// Store persists the single active routine per user. Get returns (nil, nil)
// when there is none.
type Store interface {
	GetActiveRoutine(ctx context.Context, userID string) (*models.Routine, error)
	PutActiveRoutine(ctx context.Context, userID string, r *models.Routine) error
	DeleteActiveRoutine(ctx context.Context, userID string) (int64, error)
}

// UserResolver identifies the current user. An empty id means nobody is
// signed in.
type UserResolver interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Tracker owns the lifecycle of each user's active routine. Storage errors
// are returned wrapped but otherwise unchanged.
type Tracker struct {
	store Store
	users UserResolver
	log   *slog.Logger
	now   func() time.Time
}

// NewTracker creates a Tracker.
func NewTracker(store Store, users UserResolver, log *slog.Logger) *Tracker {
	return &Tracker{store: store, users: users, log: log, now: time.Now}
}

// Active returns the current user's routine, or nil if there is none or no
// user is signed in. A routine whose progress no longer lines up with its
// days is reset and saved before it is returned.
func (t *Tracker) Active(ctx context.Context) (*models.Routine, error) {
	uid, err := t.users.CurrentUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	if uid == "" {
		return nil, nil
	}
	return t.load(ctx, uid)
}

func (t *Tracker) load(ctx context.Context, uid string) (*models.Routine, error) {
	r, err := t.store.GetActiveRoutine(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("loading active routine: %w", err)
	}
	if r == nil {
		return nil, nil
	}
	if !r.ProgressAligned() {
		t.log.Warn("repairing routine progress",
			"user_id", uid, "days", len(r.Days), "progress", len(r.Progress))
		r.Progress = models.NewProgress(r.Days)
		if err := t.store.PutActiveRoutine(ctx, uid, r); err != nil {
			return nil, fmt.Errorf("saving repaired routine: %w", err)
		}
	}
	return r, nil
}

// Start stores r as the current user's active routine, replacing any
// previous one.
func (t *Tracker) Start(ctx context.Context, r *models.Routine) (*models.Routine, error) {
	if r == nil {
		return nil, models.Invalid("routine", "is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	uid, err := t.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !r.ProgressAligned() {
		r.Progress = models.NewProgress(r.Days)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = t.now().UTC()
	}
	if err := t.store.PutActiveRoutine(ctx, uid, r); err != nil {
		return nil, fmt.Errorf("saving active routine: %w", err)
	}
	t.log.Info("routine started", "user_id", uid, "template", r.TemplateKey, "days", len(r.Days))
	return r, nil
}

// MarkDayComplete marks the addressed day complete and links workoutID to
// it. Marking a day again keeps it complete and appends another link. An
// address that matches no day leaves the routine unchanged. An empty
// workoutID is rejected before anything is loaded.
func (t *Tracker) MarkDayComplete(ctx context.Context, addr models.DayAddress, workoutID string) (*models.Routine, error) {
	if strings.TrimSpace(workoutID) == "" {
		return nil, models.Invalid("workout_id", "is required")
	}
	uid, err := t.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	r, err := t.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNoActiveRoutine
	}

	i := addr.Resolve(r.Progress)
	if i < 0 {
		t.log.Warn("day address matched nothing", "user_id", uid, "address", addr.String())
		return r, nil
	}

	now := t.now().UTC()
	p := &r.Progress[i]
	p.Completed = true
	p.WorkoutIDs = append(p.WorkoutIDs, workoutID)
	p.LastCompletedAt = &now

	if err := t.store.PutActiveRoutine(ctx, uid, r); err != nil {
		return nil, fmt.Errorf("saving routine progress: %w", err)
	}
	metrics.RoutineDaysCompletedTotal.Inc()
	return r, nil
}

// Finalize deletes the current user's active routine. Linked workout
// records are untouched.
func (t *Tracker) Finalize(ctx context.Context) error {
	uid, err := t.requireUser(ctx)
	if err != nil {
		return err
	}
	n, err := t.store.DeleteActiveRoutine(ctx, uid)
	if err != nil {
		return fmt.Errorf("deleting active routine: %w", err)
	}
	if n == 0 {
		return ErrNoActiveRoutine
	}
	t.log.Info("routine finalized", "user_id", uid)
	return nil
}

// Statistics derives progress figures from the active routine on every
// call. With no user signed in it returns zero stats.
func (t *Tracker) Statistics(ctx context.Context) (*models.RoutineStats, error) {
	uid, err := t.users.CurrentUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	if uid == "" {
		return &models.RoutineStats{}, nil
	}
	r, err := t.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNoActiveRoutine
	}
	stats := ComputeStats(r.Progress)
	return &stats, nil
}

// ComputeStats derives statistics from a progress array. LongestStreak is
// the longest run of completed days in day order.
func ComputeStats(progress []models.DayProgress) models.RoutineStats {
	s := models.RoutineStats{TotalDays: len(progress)}
	run := 0
	for _, p := range progress {
		if p.Completed {
			s.DaysCompleted++
			run++
			if run > s.LongestStreak {
				s.LongestStreak = run
			}
		} else {
			run = 0
		}
		if len(p.WorkoutIDs) > 0 && p.LastCompletedAt != nil {
			if s.LastWorkoutAt == nil || p.LastCompletedAt.After(*s.LastWorkoutAt) {
				ts := *p.LastCompletedAt
				s.LastWorkoutAt = &ts
			}
		}
	}
	if s.TotalDays > 0 {
		s.PercentComplete = int(math.Round(100 * float64(s.DaysCompleted) / float64(s.TotalDays)))
	}
	return s
}

func (t *Tracker) requireUser(ctx context.Context) (string, error) {
	uid, err := t.users.CurrentUserID(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving current user: %w", err)
	}
	if uid == "" {
		return "", models.ErrNoCurrentUser
	}
	return uid, nil
}

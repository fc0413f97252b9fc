package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/gymapp/internal/ingest"
	"github.com/claude/gymapp/internal/metrics"
	"github.com/claude/gymapp/internal/session"
)

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	workouts ingest.WorkoutSaver
	logs     ingest.LogStore
	log      *slog.Logger
}

// NewProvider creates a new Alpha Progression import provider. logs may be
// nil to skip import-log bookkeeping.
func NewProvider(workouts ingest.WorkoutSaver, logs ingest.LogStore, log *slog.Logger) *Provider {
	return &Provider{workouts: workouts, logs: logs, log: log}
}

// Ingest parses an export and saves one workout per session for userID, or
// for the current user when userID is empty. With dryRun nothing is saved.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID string, dryRun bool) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if userID != "" {
		ctx = session.WithUserID(ctx, userID)
	}
	if dryRun {
		return p.convert(ctx, sessions, true)
	}
	return ingest.Track(ctx, p.logs, metrics.SourceAlpha, userID, func() (*ingest.Result, error) {
		return p.convert(ctx, sessions, false)
	})
}

func (p *Provider) convert(ctx context.Context, sessions []Session, dryRun bool) (*ingest.Result, error) {
	result := &ingest.Result{SessionsReceived: len(sessions), DryRun: dryRun}
	for _, s := range sessions {
		rec, warmups := ToWorkout(s)
		result.WarmupsDropped += warmups
		for _, ex := range rec.Exercises {
			result.SetsReceived += len(ex.Sets)
		}
		if dryRun {
			continue
		}
		if _, err := p.workouts.Save(ctx, rec); err != nil {
			return result, fmt.Errorf("saving session %s: %w", s.Start.Format("2006-01-02 15:04"), err)
		}
		result.WorkoutsSaved++
	}
	if !dryRun {
		metrics.ImportedWorkoutsTotal.WithLabelValues(metrics.SourceAlpha).Add(float64(result.WorkoutsSaved))
	}
	p.log.Info("alpha import finished",
		"sessions", result.SessionsReceived,
		"saved", result.WorkoutsSaved,
		"warmups_dropped", result.WarmupsDropped,
		"dry_run", dryRun,
	)
	return result, nil
}

package mcp

import (
	"context"

	"github.com/claude/gymapp/internal/catalog"
	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/templates"
	"github.com/claude/gymapp/internal/workoutlog"
)

// DataSource abstracts the services behind the MCP tools. LocalSource
// (in-process) and HTTPClient (remote via REST API) satisfy this interface.
// The acting user is taken from the context.
type DataSource interface {
	GenerateRoutine(ctx context.Context, req routine.Request, start bool) (*models.Routine, error)
	ActiveRoutine(ctx context.Context) (*models.Routine, error)
	RoutineStats(ctx context.Context) (*models.RoutineStats, error)
	CompleteDay(ctx context.Context, day models.DayAddress, workoutID string) (*models.Routine, error)
	ListTemplates(ctx context.Context, goal, level string, days int) ([]models.TemplateSummary, error)
	SearchExercises(ctx context.Context, term string, limit int) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id string) (*models.Exercise, error)
	ListWorkouts(ctx context.Context) ([]models.WorkoutRecord, error)
	WorkoutSummary(ctx context.Context) (*models.WorkoutSummary, error)
}

// LocalSource serves MCP requests from in-process services.
type LocalSource struct {
	Workouts  *workoutlog.Log
	Tracker   *routine.Tracker
	Generator *routine.Generator
	Templates *templates.Registry
	Catalog   *catalog.Provider
}

// Compile-time check: *LocalSource satisfies DataSource.
var _ DataSource = (*LocalSource)(nil)

func (s *LocalSource) GenerateRoutine(ctx context.Context, req routine.Request, start bool) (*models.Routine, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r := s.Generator.Generate(req)
	if !start {
		return r, nil
	}
	return s.Tracker.Start(ctx, r)
}

func (s *LocalSource) ActiveRoutine(ctx context.Context) (*models.Routine, error) {
	return s.Tracker.Active(ctx)
}

func (s *LocalSource) RoutineStats(ctx context.Context) (*models.RoutineStats, error) {
	return s.Tracker.Statistics(ctx)
}

func (s *LocalSource) CompleteDay(ctx context.Context, day models.DayAddress, workoutID string) (*models.Routine, error) {
	return s.Tracker.MarkDayComplete(ctx, day, workoutID)
}

func (s *LocalSource) ListTemplates(_ context.Context, goal, level string, days int) ([]models.TemplateSummary, error) {
	return s.Templates.Filter(goal, level, days), nil
}

func (s *LocalSource) SearchExercises(ctx context.Context, term string, limit int) ([]models.Exercise, error) {
	return s.Catalog.Search(ctx, term, limit), nil
}

func (s *LocalSource) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	return s.Catalog.LookupByID(ctx, id)
}

func (s *LocalSource) ListWorkouts(ctx context.Context) ([]models.WorkoutRecord, error) {
	return s.Workouts.List(ctx)
}

func (s *LocalSource) WorkoutSummary(ctx context.Context) (*models.WorkoutSummary, error) {
	return s.Workouts.Summary(ctx)
}

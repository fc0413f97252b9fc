package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/session"
)

// fakeSource records the calls it receives and the user pinned on them.
type fakeSource struct {
	user      string
	request   routine.Request
	started   bool
	day       models.DayAddress
	workoutID string
	routine   *models.Routine
	workouts  []models.WorkoutRecord
	err       error
}

func (f *fakeSource) pin(ctx context.Context) {
	f.user, _ = session.UserIDFromContext(ctx)
}

func (f *fakeSource) GenerateRoutine(ctx context.Context, req routine.Request, start bool) (*models.Routine, error) {
	f.pin(ctx)
	f.request, f.started = req, start
	if f.err != nil {
		return nil, f.err
	}
	return &models.Routine{TemplateKey: "hipertrofia-4dias", Goal: req.Goal}, nil
}

func (f *fakeSource) ActiveRoutine(ctx context.Context) (*models.Routine, error) {
	f.pin(ctx)
	return f.routine, f.err
}

func (f *fakeSource) RoutineStats(ctx context.Context) (*models.RoutineStats, error) {
	f.pin(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return &models.RoutineStats{DaysCompleted: 1, TotalDays: 4, PercentComplete: 25}, nil
}

func (f *fakeSource) CompleteDay(ctx context.Context, day models.DayAddress, workoutID string) (*models.Routine, error) {
	f.pin(ctx)
	f.day, f.workoutID = day, workoutID
	return f.routine, f.err
}

func (f *fakeSource) ListTemplates(context.Context, string, string, int) ([]models.TemplateSummary, error) {
	return []models.TemplateSummary{{Key: "principiante-3dias"}}, nil
}

func (f *fakeSource) SearchExercises(context.Context, string, int) ([]models.Exercise, error) {
	return []models.Exercise{{ID: "press-banca"}}, nil
}

func (f *fakeSource) GetExercise(_ context.Context, id string) (*models.Exercise, error) {
	if id != "press-banca" {
		return nil, nil
	}
	return &models.Exercise{ID: id, MuscleGroup: "pecho"}, nil
}

func (f *fakeSource) ListWorkouts(ctx context.Context) ([]models.WorkoutRecord, error) {
	f.pin(ctx)
	return f.workouts, f.err
}

func (f *fakeSource) WorkoutSummary(ctx context.Context) (*models.WorkoutSummary, error) {
	f.pin(ctx)
	return &models.WorkoutSummary{TotalWorkouts: len(f.workouts)}, f.err
}

func newTestHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestNewRegistersEverything verifies the server builds with all tools.
func TestNewRegistersEverything(t *testing.T) {
	s := New(&fakeSource{}, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if s == nil {
		t.Fatal("New returned nil")
	}
}

// TestGenerateRoutineTool verifies argument mapping and user pinning.
func TestGenerateRoutineTool(t *testing.T) {
	ds := &fakeSource{}
	h := newTestHandlers(ds)

	res, err := h.generateRoutine(context.Background(), callRequest(map[string]any{
		"goal":          "hipertrofia",
		"level":         "intermedio",
		"days_per_week": float64(4),
		"equipment":     []any{"barra", "mancuernas"},
		"start":         true,
		"user_id":       "user-1",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if ds.request.DaysPerWeek != 4 || len(ds.request.Equipment) != 2 || !ds.started {
		t.Errorf("request = %+v started=%v", ds.request, ds.started)
	}
	if ds.user != "user-1" {
		t.Errorf("pinned user = %q, want user-1", ds.user)
	}

	var r models.Routine
	if err := json.Unmarshal([]byte(resultText(t, res)), &r); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if r.TemplateKey != "hipertrofia-4dias" {
		t.Errorf("template = %q", r.TemplateKey)
	}
}

// TestGenerateRoutineMissingArgs verifies required arguments are enforced.
func TestGenerateRoutineMissingArgs(t *testing.T) {
	h := newTestHandlers(&fakeSource{})
	res, err := h.generateRoutine(context.Background(), callRequest(map[string]any{"goal": "fuerza"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing level")
	}
}

// TestCompleteRoutineDayAddress verifies numeric and named day arguments.
func TestCompleteRoutineDayAddress(t *testing.T) {
	progress := []models.DayProgress{{DayName: "Día A"}, {DayName: "Día B"}}
	tests := []struct {
		day  any
		want int
	}{
		{float64(1), 1},
		{"0", 0},
		{"Día B", 1},
		{"Día Z", -1},
	}
	for _, tt := range tests {
		ds := &fakeSource{routine: &models.Routine{}}
		h := newTestHandlers(ds)
		res, err := h.completeRoutineDay(context.Background(), callRequest(map[string]any{
			"day": tt.day, "workout_id": "42",
		}))
		if err != nil {
			t.Fatal(err)
		}
		if res.IsError {
			t.Fatalf("day %v: tool error %s", tt.day, resultText(t, res))
		}
		if got := ds.day.Resolve(progress); got != tt.want {
			t.Errorf("day %v resolved to %d, want %d", tt.day, got, tt.want)
		}
		if ds.workoutID != "42" {
			t.Errorf("workout id = %q", ds.workoutID)
		}
	}

	h := newTestHandlers(&fakeSource{})
	res, _ := h.completeRoutineDay(context.Background(), callRequest(map[string]any{"day": 1.5, "workout_id": "x"}))
	if !res.IsError {
		t.Error("fractional day index accepted")
	}
}

// TestGetActiveRoutineNone verifies a readable message when nothing is active.
func TestGetActiveRoutineNone(t *testing.T) {
	h := newTestHandlers(&fakeSource{})
	res, err := h.getActiveRoutine(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || !strings.Contains(resultText(t, res), "No active routine") {
		t.Errorf("result = %+v", res)
	}
}

// TestToolErrors verifies service errors become tool errors, not protocol
// errors.
func TestToolErrors(t *testing.T) {
	h := newTestHandlers(&fakeSource{err: routine.ErrNoActiveRoutine})
	res, err := h.getRoutineStats(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("protocol error: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "no active routine") {
		t.Errorf("result = %+v", res)
	}
}

// TestGetExerciseNotFound verifies unknown ids produce a tool error.
func TestGetExerciseNotFound(t *testing.T) {
	h := newTestHandlers(&fakeSource{})
	res, _ := h.getExercise(context.Background(), callRequest(map[string]any{"id": "nope"}))
	if !res.IsError {
		t.Error("expected tool error")
	}
	res, _ = h.getExercise(context.Background(), callRequest(map[string]any{"id": "press-banca"}))
	if res.IsError {
		t.Errorf("unexpected error: %s", resultText(t, res))
	}
}

// TestListWorkoutsLimit verifies the limit argument truncates newest-first.
func TestListWorkoutsLimit(t *testing.T) {
	ds := &fakeSource{workouts: []models.WorkoutRecord{{ID: "3"}, {ID: "2"}, {ID: "1"}}}
	h := newTestHandlers(ds)
	res, _ := h.listWorkouts(context.Background(), callRequest(map[string]any{"limit": float64(2)}))

	var got []models.WorkoutRecord
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "3" {
		t.Errorf("workouts = %+v", got)
	}
}

// TestRecentWorkoutsResource verifies only the last two weeks are listed.
func TestRecentWorkoutsResource(t *testing.T) {
	now := time.Now().UTC()
	ds := &fakeSource{workouts: []models.WorkoutRecord{
		{ID: "new", Date: now.AddDate(0, 0, -1)},
		{ID: "old", Date: now.AddDate(0, 0, -30)},
	}}
	h := newTestHandlers(ds)

	var req mcp.ReadResourceRequest
	req.Params.URI = "gymapp://recent_workouts"
	contents, err := h.recentWorkouts(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	var got []models.WorkoutRecord
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("recent = %+v", got)
	}
}

// TestActiveRoutineResource verifies stats are attached when a routine exists.
func TestActiveRoutineResource(t *testing.T) {
	h := newTestHandlers(&fakeSource{routine: &models.Routine{Name: "Hipertrofia"}})
	var req mcp.ReadResourceRequest
	req.Params.URI = "gymapp://active_routine"
	contents, err := h.activeRoutine(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(text, `"percent_complete":25`) {
		t.Errorf("resource = %s", text)
	}
}

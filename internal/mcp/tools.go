package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/session"
)

// withUser pins the optional user_id argument onto ctx.
func withUser(ctx context.Context, req mcp.CallToolRequest) context.Context {
	if id := req.GetString("user_id", ""); id != "" {
		return session.WithUserID(ctx, id)
	}
	return ctx
}

// dayArgument reads "day" as either a zero-based index or a day name. A
// string of digits is taken as an index.
func dayArgument(req mcp.CallToolRequest) (models.DayAddress, error) {
	switch v := req.GetArguments()["day"].(type) {
	case float64:
		if v != math.Trunc(v) {
			return models.DayAddress{}, fmt.Errorf("day index %v is not an integer", v)
		}
		return models.ByIndex(int(v)), nil
	case string:
		if v == "" {
			return models.DayAddress{}, errors.New("day name is empty")
		}
		if n, err := strconv.Atoi(v); err == nil {
			return models.ByIndex(n), nil
		}
		return models.ByName(v), nil
	case nil:
		return models.DayAddress{}, errors.New("day parameter is required")
	default:
		return models.DayAddress{}, fmt.Errorf("day must be a number or a name, got %T", v)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) failed(tool string, err error) *mcp.CallToolResult {
	var ve *models.ValidationError
	callerErr := errors.As(err, &ve) ||
		errors.Is(err, models.ErrNoCurrentUser) ||
		errors.Is(err, session.ErrUserNotFound) ||
		errors.Is(err, routine.ErrNoActiveRoutine)
	if !callerErr {
		h.log.Error("mcp "+tool, "error", err)
	}
	return mcp.NewToolResultError(tool + " failed: " + err.Error())
}

var userIDOption = mcp.WithString("user_id", mcp.Description("Act as this user instead of the signed-in one"))

// --- Tool definitions ---

var toolGenerateRoutine = mcp.NewTool("generate_routine",
	mcp.WithDescription("Generate a routine from the template matching goal, level and days per week. Optionally filter exercises by available equipment and start it as the active routine."),
	mcp.WithString("goal", mcp.Required(), mcp.Description("Training goal (fuerza, hipertrofia, definicion, general or the English strength/hypertrophy/cutting)")),
	mcp.WithString("level", mcp.Required(), mcp.Description("Experience level (principiante, intermedio, avanzado)")),
	mcp.WithNumber("days_per_week", mcp.Required(), mcp.Description("Training days per week, 1 to 7")),
	mcp.WithArray("equipment", mcp.Description("Available equipment tags (e.g. barra, mancuernas, peso-corporal)"), mcp.WithStringItems()),
	mcp.WithBoolean("start", mcp.Description("Store the result as the active routine, replacing any current one. Defaults to false.")),
	userIDOption,
)

var toolGetActiveRoutine = mcp.NewTool("get_active_routine",
	mcp.WithDescription("Return the active routine with per-day completion progress, or a message when there is none."),
	userIDOption,
)

var toolGetRoutineStats = mcp.NewTool("get_routine_stats",
	mcp.WithDescription("Progress statistics for the active routine: days completed, percent complete, longest streak and last workout time."),
	userIDOption,
)

var toolCompleteRoutineDay = mcp.NewTool("complete_routine_day",
	mcp.WithDescription("Mark a routine day complete and link a logged workout to it."),
	mcp.WithString("day", mcp.Required(), mcp.Description("Day name, or its zero-based position (e.g. '0' for the first day)")),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Identifier of the logged workout")),
	userIDOption,
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List built-in routine templates, optionally filtered by goal, level and days per week."),
	mcp.WithString("goal", mcp.Description("Filter by goal")),
	mcp.WithString("level", mcp.Description("Filter by level")),
	mcp.WithNumber("days_per_week", mcp.Description("Filter by days per week")),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by name, muscle group or equipment. Local exercises come first; remote results are included when configured."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search term (e.g. 'press', 'pecho')")),
	mcp.WithNumber("limit", mcp.Description("Maximum results. Defaults to 20.")),
)

var toolGetExercise = mcp.NewTool("get_exercise",
	mcp.WithDescription("Get one exercise with instructions and recommended sets and reps."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Exercise identifier (e.g. press-banca)")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List logged workouts newest first, with exercises and sets."),
	mcp.WithNumber("limit", mcp.Description("Maximum workouts. Defaults to 20.")),
	userIDOption,
)

var toolGetWorkoutSummary = mcp.NewTool("get_workout_summary",
	mcp.WithDescription("Totals for the workout log: count, consecutive training days, average exercises per session and the last workout."),
	userIDOption,
)

// --- Tool handlers ---

func (h *handlers) generateRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := req.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError("goal parameter is required"), nil
	}
	level, err := req.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError("level parameter is required"), nil
	}
	days, err := req.RequireInt("days_per_week")
	if err != nil {
		return mcp.NewToolResultError("days_per_week parameter is required"), nil
	}

	r, err := h.ds.GenerateRoutine(withUser(ctx, req), routine.Request{
		Goal:        goal,
		Level:       level,
		DaysPerWeek: days,
		Equipment:   req.GetStringSlice("equipment", nil),
	}, req.GetBool("start", false))
	if err != nil {
		return h.failed("generate_routine", err), nil
	}
	return jsonResult(r)
}

func (h *handlers) getActiveRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := h.ds.ActiveRoutine(withUser(ctx, req))
	if err != nil {
		return h.failed("get_active_routine", err), nil
	}
	if r == nil {
		return mcp.NewToolResultText("No active routine."), nil
	}
	return jsonResult(r)
}

func (h *handlers) getRoutineStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.RoutineStats(withUser(ctx, req))
	if err != nil {
		return h.failed("get_routine_stats", err), nil
	}
	return jsonResult(stats)
}

func (h *handlers) completeRoutineDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := dayArgument(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	workoutID, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}

	r, err := h.ds.CompleteDay(withUser(ctx, req), day, workoutID)
	if err != nil {
		return h.failed("complete_routine_day", err), nil
	}
	return jsonResult(r)
}

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.ds.ListTemplates(ctx, req.GetString("goal", ""), req.GetString("level", ""), req.GetInt("days_per_week", 0))
	if err != nil {
		return h.failed("list_templates", err), nil
	}
	return jsonResult(list)
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	list, err := h.ds.SearchExercises(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return h.failed("search_exercises", err), nil
	}
	return jsonResult(list)
}

func (h *handlers) getExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	ex, err := h.ds.GetExercise(ctx, id)
	if err != nil {
		return h.failed("get_exercise", err), nil
	}
	if ex == nil {
		return mcp.NewToolResultError("exercise " + id + " not found"), nil
	}
	return jsonResult(ex)
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := h.ds.ListWorkouts(withUser(ctx, req))
	if err != nil {
		return h.failed("list_workouts", err), nil
	}
	if limit := req.GetInt("limit", 20); limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	if recs == nil {
		recs = []models.WorkoutRecord{}
	}
	return jsonResult(recs)
}

func (h *handlers) getWorkoutSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := h.ds.WorkoutSummary(withUser(ctx, req))
	if err != nil {
		return h.failed("get_workout_summary", err), nil
	}
	return jsonResult(sum)
}

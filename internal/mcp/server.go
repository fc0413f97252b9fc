package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GymApp", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("GymApp training server. Generate and track workout routines, browse the exercise catalog and review logged workouts. Data is scoped to the signed-in user unless a user_id argument is given."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGenerateRoutine, Handler: h.generateRoutine},
		server.ServerTool{Tool: toolGetActiveRoutine, Handler: h.getActiveRoutine},
		server.ServerTool{Tool: toolGetRoutineStats, Handler: h.getRoutineStats},
		server.ServerTool{Tool: toolCompleteRoutineDay, Handler: h.completeRoutineDay},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolGetExercise, Handler: h.getExercise},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkoutSummary, Handler: h.getWorkoutSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resActiveRoutine, Handler: h.activeRoutine},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resTemplateCatalog, Handler: h.templateCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resActiveRoutine = mcp.NewResource(
	"gymapp://active_routine",
	"Active Routine",
	mcp.WithResourceDescription("The signed-in user's active routine with per-day progress and derived statistics"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"gymapp://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts logged in the last 14 days, newest first"),
	mcp.WithMIMEType("application/json"),
)

var resTemplateCatalog = mcp.NewResource(
	"gymapp://template_catalog",
	"Template Catalog",
	mcp.WithResourceDescription("All built-in routine templates with goal, level and days per week"),
	mcp.WithMIMEType("application/json"),
)

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/gymapp/internal/catalog"
	"github.com/claude/gymapp/internal/ingest/alpha"
	"github.com/claude/gymapp/internal/ingest/legacy"
	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/session"
	"github.com/claude/gymapp/internal/templates"
	"github.com/claude/gymapp/internal/workoutlog"
)

// ImportLogReader lists recent import runs.
type ImportLogReader interface {
	QueryImportLogs(ctx context.Context, limit int) ([]models.ImportLog, error)
}

// Services bundles the components the handlers call.
type Services struct {
	Users      *session.Directory
	Workouts   *workoutlog.Log
	Tracker    *routine.Tracker
	Generator  *routine.Generator
	Templates  *templates.Registry
	Catalog    *catalog.Provider
	Alpha      *alpha.Provider
	Legacy     *legacy.Importer
	ImportLogs ImportLogReader
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *Services
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all API routes configured.
func New(svc *Services, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(PinUser)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Get("/{id}", s.handleGetUser)
			r.Delete("/{id}", s.handleDeleteUser)
			r.Post("/{id}/verify-pin", s.handleVerifyPIN)
		})

		r.Get("/session", s.handleGetSession)
		r.Post("/session", s.handleLogin)
		r.Delete("/session", s.handleLogout)

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", s.handleListWorkouts)
			r.Post("/", s.handleSaveWorkout)
			r.Get("/summary", s.handleWorkoutSummary)
			r.Get("/{id}", s.handleGetWorkout)
			r.Patch("/{id}", s.handleUpdateWorkout)
			r.Delete("/{id}", s.handleDeleteWorkout)
		})

		r.Route("/routine", func(r chi.Router) {
			r.Get("/", s.handleGetRoutine)
			r.Put("/", s.handleStartRoutine)
			r.Delete("/", s.handleFinalizeRoutine)
			r.Post("/generate", s.handleGenerateRoutine)
			r.Post("/complete", s.handleCompleteDay)
			r.Get("/stats", s.handleRoutineStats)
		})

		r.Get("/templates", s.handleListTemplates)
		r.Get("/templates/{key}", s.handleGetTemplate)

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Get("/muscle-groups", s.handleMuscleGroups)
			r.Get("/by-muscle/{group}", s.handleExercisesByMuscle)
			r.Get("/{id}", s.handleGetExercise)
			r.Get("/{id}/similar", s.handleSimilarExercises)
		})
		r.Get("/catalog/status", s.handleCatalogStatus)

		// Imports (API key required)
		r.Route("/import", func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/alpha", s.handleAlphaImport)
			r.Post("/legacy", s.handleLegacyImport)
			r.Get("/logs", s.handleImportLogs)
		})
	})
}

// EnableMetrics serves Prometheus metrics on /metrics.
func (s *Server) EnableMetrics() {
	s.router.Handle("/metrics", promhttp.Handler())
}

// SetMCP serves an MCP streamable HTTP handler on /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

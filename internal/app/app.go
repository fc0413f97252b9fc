// Package app wires configuration, storage and services together for the
// command-line entry points.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/gymapp/internal/catalog"
	"github.com/claude/gymapp/internal/config"
	"github.com/claude/gymapp/internal/ingest/alpha"
	"github.com/claude/gymapp/internal/ingest/legacy"
	"github.com/claude/gymapp/internal/mcp"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/server"
	"github.com/claude/gymapp/internal/session"
	"github.com/claude/gymapp/internal/storage"
	"github.com/claude/gymapp/internal/templates"
	"github.com/claude/gymapp/internal/workoutlog"
)

// App holds the opened backend and the services built on it.
type App struct {
	Services *server.Services
	Backend  storage.Backend
	// Cache is nil when no remote catalog is configured.
	Cache *catalog.Cache
}

// Open migrates and connects the database and builds every service.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Database.Driver, err)
	}

	a, err := build(db, cfg.Catalog, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func build(db storage.Backend, cc config.CatalogConfig, log *slog.Logger) (*App, error) {
	reg, err := templates.Builtin()
	if err != nil {
		return nil, err
	}
	local, err := catalog.NewLocal()
	if err != nil {
		return nil, err
	}

	a := &App{Backend: db}
	var remote catalog.RemoteSource
	if cc.APIKey != "" {
		a.Cache = catalog.NewCache(cc.CacheSizeBytes(), cc.CacheTTL.D())
		remote = NewRemote(cc, a.Cache, log)
	}
	cat := catalog.NewProvider(local, remote, log)

	users := session.NewDirectory(db, log)
	workouts := workoutlog.New(db, users, log)
	tracker := routine.NewTracker(db, users, log)
	a.Services = &server.Services{
		Users:      users,
		Workouts:   workouts,
		Tracker:    tracker,
		Generator:  routine.NewGenerator(reg, local, log),
		Templates:  reg,
		Catalog:    cat,
		Alpha:      alpha.NewProvider(workouts, db, log),
		Legacy:     legacy.NewImporter(users, workouts, tracker, db, log),
		ImportLogs: db,
	}
	return a, nil
}

// NewRemote builds the ExerciseDB client described by cc.
func NewRemote(cc config.CatalogConfig, cache *catalog.Cache, log *slog.Logger) *catalog.Remote {
	return catalog.NewRemote(catalog.RemoteConfig{
		APIKey:            cc.APIKey,
		Host:              cc.Host,
		BaseURL:           cc.BaseURL,
		Timeout:           cc.Timeout.D(),
		RequestsPerSecond: cc.RequestsPerSecond,
		Burst:             cc.Burst,
	}, cache, log)
}

// MCPSource exposes the services to the MCP server in-process.
func (a *App) MCPSource() *mcp.LocalSource {
	return &mcp.LocalSource{
		Workouts:  a.Services.Workouts,
		Tracker:   a.Services.Tracker,
		Generator: a.Services.Generator,
		Templates: a.Services.Templates,
		Catalog:   a.Services.Catalog,
	}
}

// Close releases the database.
func (a *App) Close() error {
	return a.Backend.Close()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/gymapp/internal/app"
	"github.com/claude/gymapp/internal/config"
	"github.com/claude/gymapp/internal/ingest"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	source := flag.String("source", "", "export format: alpha (Alpha Progression CSV) or legacy (JSON backup)")
	file := flag.String("file", "", "path to the export file (required)")
	userID := flag.String("user", "", "user id for alpha imports (defaults to the signed-in user)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *file == "" || (*source != "alpha" && *source != "legacy") {
		fmt.Fprintf(os.Stderr, "Usage: gymapp-import -config config.yaml -source alpha|legacy -file export [-user id] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Error("failed to open export", "path", *file, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	var res *ingest.Result
	switch *source {
	case "alpha":
		res, err = a.Services.Alpha.Ingest(ctx, f, *userID, *dryRun)
	case "legacy":
		res, err = a.Services.Legacy.Import(ctx, f, *dryRun)
	}
	printResult(log, res)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete")
}

func printResult(log *slog.Logger, res *ingest.Result) {
	if res == nil {
		return
	}
	log.Info("import result",
		"sessions_received", res.SessionsReceived,
		"workouts_saved", res.WorkoutsSaved,
		"sets_received", res.SetsReceived,
		"warmups_dropped", res.WarmupsDropped,
		"users_created", res.UsersCreated,
		"users_reused", res.UsersReused,
		"routines_imported", res.RoutinesImported,
		"skipped", res.Skipped,
	)
	for _, e := range res.Errors {
		log.Warn("skipped", "reason", e)
	}
}

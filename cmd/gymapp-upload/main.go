package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/gymapp/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "GymApp server URL (e.g. https://gymapp.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("GYMAPP_AUTH_API_KEY"), "server API key (defaults to $GYMAPP_AUTH_API_KEY)")
	path := flag.String("path", "", "export file or directory of exports")
	source := flag.String("source", "", "force the format: alpha or legacy (default: by extension)")
	userID := flag.String("user", "", "user id for alpha imports")
	dryRun := flag.Bool("dry-run", false, "ask the server to report counts without saving")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymapp-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *path == "" || *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymapp-upload -server <URL> -path <file or dir> [-source alpha|legacy] [-user id] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	files, err := upload.Collect(*path)
	if err != nil {
		log.Error("failed to collect exports", "path", *path, "error", err)
		os.Exit(1)
	}
	log.Info("found exports", "count", len(files))

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".gymapp-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	u := upload.New(upload.NewClient(*serverURL, *apiKey), state, upload.Options{
		Source: *source,
		UserID: *userID,
		DryRun: *dryRun,
	}, log)
	stats, err := u.Run(ctx, files)
	log.Info("upload finished",
		"files", stats.FilesTotal,
		"uploaded", stats.FilesUploaded,
		"skipped", stats.FilesSkipped,
		"errored", stats.FilesErrored,
		"workouts_saved", stats.WorkoutsSaved,
		"users_created", stats.UsersCreated,
	)
	if err != nil || stats.FilesErrored > 0 {
		os.Exit(1)
	}
}

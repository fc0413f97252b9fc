// Package upload sends workout export files to a remote GymApp server.
package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/gymapp/internal/metrics"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	WorkoutsSaved int
	UsersCreated  int
	ItemsSkipped  int
}

// Options configure an upload run.
type Options struct {
	// Source forces the import format; empty detects it per file.
	Source string
	UserID string
	DryRun bool
}

// Uploader walks export files and POSTs each one to the server, skipping
// files the state database says were already accepted.
type Uploader struct {
	client *Client
	state  *StateDB
	opts   Options
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. state may be nil to always send.
func New(client *Client, state *StateDB, opts Options, log *slog.Logger) *Uploader {
	return &Uploader{client: client, state: state, opts: opts, log: log}
}

// DetectSource maps a file name onto an import source: .csv files are
// Alpha Progression exports and .json files are legacy backups.
func DetectSource(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return metrics.SourceAlpha, true
	case ".json":
		return metrics.SourceLegacy, true
	}
	return "", false
}

// Collect expands path into the export files below it, sorted by name.
func Collect(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := DetectSource(p); ok {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

// Run uploads every file. A failing file is counted and logged; the run
// continues with the next one.
func (u *Uploader) Run(ctx context.Context, files []string) (*Stats, error) {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.send(ctx, f); err != nil {
			u.stats.FilesErrored++
			u.log.Error("upload failed", "file", f, "error", err)
		}
	}
	return &u.stats, nil
}

func (u *Uploader) send(ctx context.Context, path string) error {
	source := u.opts.Source
	if source == "" {
		var ok bool
		if source, ok = DetectSource(path); !ok {
			return fmt.Errorf("unknown export format for %s", filepath.Base(path))
		}
	}

	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}
	if u.state != nil && !u.opts.DryRun {
		sent, err := u.state.IsSent(u.client.serverURL, hash)
		if err != nil {
			return fmt.Errorf("checking state: %w", err)
		}
		if sent {
			u.stats.FilesSkipped++
			u.log.Info("already uploaded", "file", path)
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := u.client.SendExport(ctx, source, data, SendOptions{UserID: u.opts.UserID, DryRun: u.opts.DryRun})
	if err != nil {
		return err
	}

	u.stats.FilesUploaded++
	u.stats.WorkoutsSaved += res.WorkoutsSaved
	u.stats.UsersCreated += res.UsersCreated
	u.stats.ItemsSkipped += res.Skipped
	for _, e := range res.Errors {
		u.log.Warn("server skipped item", "file", path, "reason", e)
	}
	u.log.Info("uploaded", "file", path, "source", source,
		"sessions", res.SessionsReceived, "saved", res.WorkoutsSaved, "dry_run", u.opts.DryRun)

	if u.state != nil && !u.opts.DryRun {
		if err := u.state.MarkSent(u.client.serverURL, hash, path, source); err != nil {
			return fmt.Errorf("recording upload: %w", err)
		}
	}
	return nil
}

// Package legacy imports the JSON export of the browser-only version of the
// app: users, their workout history and each user's active routine.
package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/claude/gymapp/internal/ingest"
	"github.com/claude/gymapp/internal/metrics"
	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/session"
)

// Users finds and registers profiles. *session.Directory implements it.
type Users interface {
	FindUserByName(ctx context.Context, name string) (*models.User, error)
	Register(ctx context.Context, name, avatar, pin string) (*models.User, error)
}

// RoutineStarter stores the active routine of the user resolved from ctx.
// *routine.Tracker implements it.
type RoutineStarter interface {
	Start(ctx context.Context, r *models.Routine) (*models.Routine, error)
}

// Importer loads legacy exports.
type Importer struct {
	users    Users
	workouts ingest.WorkoutSaver
	routines RoutineStarter
	logs     ingest.LogStore
	log      *slog.Logger
}

// NewImporter creates an Importer. logs may be nil.
func NewImporter(users Users, workouts ingest.WorkoutSaver, routines RoutineStarter, logs ingest.LogStore, log *slog.Logger) *Importer {
	return &Importer{users: users, workouts: workouts, routines: routines, logs: logs, log: log}
}

// Import reads an export from r. Failures of single users, workouts or
// routines are recorded in the result and do not stop the import. With
// dryRun nothing is written.
func (im *Importer) Import(ctx context.Context, r io.Reader, dryRun bool) (*ingest.Result, error) {
	var exp Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if dryRun {
		return im.run(ctx, &exp, true)
	}
	return ingest.Track(ctx, im.logs, metrics.SourceLegacy, "", func() (*ingest.Result, error) {
		return im.run(ctx, &exp, false)
	})
}

func (im *Importer) run(ctx context.Context, exp *Export, dryRun bool) (*ingest.Result, error) {
	res := &ingest.Result{DryRun: dryRun}
	ids := map[string]string{}

	for _, u := range exp.AllUsers() {
		key := nameKey(u.Name)
		if key == "" {
			res.Failf("user without name")
			continue
		}
		if _, seen := ids[key]; seen {
			continue
		}
		existing, err := im.users.FindUserByName(ctx, u.Name)
		if err != nil {
			return res, err
		}
		switch {
		case existing != nil:
			ids[key] = existing.ID
			res.UsersReused++
		case dryRun:
			ids[key] = ""
			res.UsersCreated++
		default:
			created, err := im.users.Register(ctx, u.Name, u.Avatar, u.PIN)
			if err != nil {
				res.Failf("user %q: %v", u.Name, err)
				continue
			}
			ids[key] = created.ID
			res.UsersCreated++
		}
	}

	resolve := func(name string) (string, bool, error) {
		if id, ok := ids[nameKey(name)]; ok {
			return id, true, nil
		}
		u, err := im.users.FindUserByName(ctx, name)
		if err != nil || u == nil {
			return "", false, err
		}
		ids[nameKey(name)] = u.ID
		return u.ID, true, nil
	}

	for _, name := range sortedKeys(exp.Entrenamientos) {
		workouts := exp.Entrenamientos[name]
		uid, ok, err := resolve(name)
		if err != nil {
			return res, err
		}
		if !ok {
			res.SessionsReceived += len(workouts)
			res.Failf("%d workouts for unknown user %q", len(workouts), name)
			res.Skipped += len(workouts) - 1
			continue
		}
		userCtx := session.WithUserID(ctx, uid)
		for _, w := range workouts {
			res.SessionsReceived++
			rec, err := w.ToRecord()
			if err != nil {
				res.Failf("workout %s of %q: %v", w.ID, name, err)
				continue
			}
			for _, ex := range rec.Exercises {
				res.SetsReceived += len(ex.Sets)
			}
			if dryRun {
				continue
			}
			if _, err := im.workouts.Save(userCtx, rec); err != nil {
				res.Failf("workout %s of %q: %v", w.ID, name, err)
				continue
			}
			res.WorkoutsSaved++
		}
	}

	for _, name := range sortedKeys(exp.RutinasActivas) {
		raw := exp.RutinasActivas[name]
		if raw == nil {
			continue
		}
		uid, ok, err := resolve(name)
		if err != nil {
			return res, err
		}
		if !ok {
			res.Failf("routine for unknown user %q", name)
			continue
		}
		rt, err := raw.ToRoutine()
		if err != nil {
			res.Failf("routine of %q: %v", name, err)
			continue
		}
		if !dryRun {
			if _, err := im.routines.Start(session.WithUserID(ctx, uid), rt); err != nil {
				res.Failf("routine of %q: %v", name, err)
				continue
			}
		}
		res.RoutinesImported++
	}

	if !dryRun {
		metrics.ImportedWorkoutsTotal.WithLabelValues(metrics.SourceLegacy).Add(float64(res.WorkoutsSaved))
	}
	im.log.Info("legacy import finished",
		"users_created", res.UsersCreated,
		"workouts", res.WorkoutsSaved,
		"routines", res.RoutinesImported,
		"skipped", res.Skipped,
		"dry_run", dryRun,
	)
	return res, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

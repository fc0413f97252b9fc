package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/claude/gymapp/internal/models"
)

// Provider merges the local catalog with an optional remote source. Local
// entries always win on identifier collisions, and remote failures are
// logged and dropped everywhere except CheckAvailability and purely-remote
// lookups.
type Provider struct {
	local  *Local
	remote RemoteSource
	log    *slog.Logger
}

// NewProvider composes local and remote. remote may be nil.
func NewProvider(local *Local, remote RemoteSource, log *slog.Logger) *Provider {
	if r, ok := remote.(*Remote); ok && (r == nil || !r.Configured()) {
		remote = nil
	}
	return &Provider{local: local, remote: remote, log: log}
}

// Local exposes the local catalog.
func (p *Provider) Local() *Local {
	return p.local
}

// RemoteEnabled reports whether a remote source is configured.
func (p *Provider) RemoteEnabled() bool {
	return p.remote != nil
}

// LookupByID checks the local catalog, then the remote source. Absence is
// (nil, nil). An error is returned only when the id is not local and the
// remote source failed for a reason other than not-found.
func (p *Provider) LookupByID(ctx context.Context, id string) (*models.Exercise, error) {
	if e, ok := p.local.Lookup(id); ok {
		return &e, nil
	}
	if p.remote == nil {
		return nil, nil
	}
	e, err := p.remote.Get(ctx, id)
	if err != nil {
		p.log.Warn("remote exercise lookup failed", "id", id, "error", err)
		return nil, err
	}
	return e, nil
}

// ListByMuscleGroup returns local matches, followed by remote matches not
// already present locally when includeRemote is set.
func (p *Provider) ListByMuscleGroup(ctx context.Context, group string, includeRemote bool) []models.Exercise {
	out, _ := p.local.ByMuscleGroup(ctx, group, 0)
	if !includeRemote || p.remote == nil {
		return out
	}
	remote, err := p.remote.ByMuscleGroup(ctx, group, 0)
	if err != nil {
		p.log.Warn("remote muscle group lookup failed", "group", group, "error", err)
		return out
	}
	return mergeUnique(out, remote, 0)
}

// Search unions local and remote matches, deduplicated by id with local
// entries first, truncated to limit.
func (p *Provider) Search(ctx context.Context, term string, limit int) []models.Exercise {
	out, _ := p.local.Search(ctx, term, 0)
	if p.remote != nil && (limit <= 0 || len(out) < limit) {
		remote, err := p.remote.Search(ctx, term, limit)
		if err != nil {
			p.log.Warn("remote search failed", "term", term, "error", err)
		} else {
			out = mergeUnique(out, remote, 0)
		}
	}
	return truncate(out, limit)
}

// Similar returns exercises sharing the primary muscle group of id,
// excluding id itself.
func (p *Provider) Similar(ctx context.Context, id string, limit int) ([]models.Exercise, error) {
	ex, err := p.LookupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ex == nil || ex.MuscleGroup == "" {
		return nil, nil
	}

	var out []models.Exercise
	local, _ := p.local.ByMuscleGroup(ctx, ex.MuscleGroup, 0)
	for _, e := range local {
		if e.ID != id && e.MuscleGroup == ex.MuscleGroup {
			out = append(out, e)
		}
	}
	if p.remote != nil && (limit <= 0 || len(out) < limit) {
		n := limit
		if n > 0 {
			n++
		}
		remote, err := p.remote.ByMuscleGroup(ctx, ex.MuscleGroup, n)
		if err != nil {
			p.log.Warn("remote similar lookup failed", "id", id, "error", err)
		} else {
			filtered := remote[:0]
			for _, e := range remote {
				if e.ID != id {
					filtered = append(filtered, e)
				}
			}
			out = mergeUnique(out, filtered, 0)
		}
	}
	return truncate(out, limit), nil
}

// CheckAvailability reports whether the remote source is usable. It never
// fails; problems are returned as a reason.
func (p *Provider) CheckAvailability(ctx context.Context) Availability {
	if p.remote == nil {
		return Availability{Reason: ErrNotConfigured.Error()}
	}
	if err := p.remote.Check(ctx); err != nil {
		reason := err.Error()
		switch {
		case errors.Is(err, ErrRateLimited):
			reason = ErrRateLimited.Error()
		case errors.Is(err, ErrUnauthorized):
			reason = ErrUnauthorized.Error()
		case errors.Is(err, ErrNotConfigured):
			reason = ErrNotConfigured.Error()
		}
		return Availability{Reason: reason}
	}
	return Availability{Available: true}
}

// MuscleGroups lists the local muscle groups.
func (p *Provider) MuscleGroups() []string {
	return p.local.MuscleGroups()
}

// ByEquipment lists local exercises usable with the given equipment.
func (p *Provider) ByEquipment(tags []string) []models.Exercise {
	return p.local.ByEquipment(tags)
}

// mergeUnique appends extra entries whose ids are not already in base.
func mergeUnique(base, extra []models.Exercise, limit int) []models.Exercise {
	seen := make(map[string]bool, len(base))
	for _, e := range base {
		seen[e.ID] = true
	}
	for _, e := range extra {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		base = append(base, e)
	}
	return truncate(base, limit)
}

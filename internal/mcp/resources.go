package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
)

const recentWorkoutDays = 14

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) activeRoutine(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	r, err := h.ds.ActiveRoutine(ctx)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{"routine": r}
	if r != nil {
		stats, err := h.ds.RoutineStats(ctx)
		switch {
		case errors.Is(err, routine.ErrNoActiveRoutine):
			// finalized between the two reads
		case err != nil:
			h.log.Warn("active_routine: stats failed", "error", err)
		default:
			summary["stats"] = stats
		}
	}
	return jsonResource(req.Params.URI, summary)
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	recs, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -recentWorkoutDays)
	recent := []models.WorkoutRecord{}
	for _, rec := range recs {
		if rec.Date.Before(cutoff) {
			continue
		}
		recent = append(recent, rec)
	}
	return jsonResource(req.Params.URI, recent)
}

func (h *handlers) templateCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.ds.ListTemplates(ctx, "", "", 0)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, list)
}

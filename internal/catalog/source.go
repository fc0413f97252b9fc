// Package catalog provides exercise reference data from a fixed local
// catalog and an optional remote ExerciseDB service, merged behind Provider.
package catalog

import (
	"context"
	"errors"

	"github.com/claude/gymapp/internal/models"
)

// Remote failure categories. Every error except not-found wraps
// ErrUpstreamUnavailable.
var (
	ErrUpstreamUnavailable = errors.New("exercise catalog unavailable")
	ErrRateLimited         = errors.New("exercise catalog rate limit exceeded")
	ErrUnauthorized        = errors.New("exercise catalog API key invalid or lacks permission")
	ErrNotConfigured       = errors.New("exercise catalog API key not configured")
)

// Source supplies exercises. Get returns (nil, nil) when the id is unknown.
type Source interface {
	Get(ctx context.Context, id string) (*models.Exercise, error)
	ByMuscleGroup(ctx context.Context, group string, limit int) ([]models.Exercise, error)
	Search(ctx context.Context, term string, limit int) ([]models.Exercise, error)
}

// RemoteSource is a Source that can also report whether it is usable.
type RemoteSource interface {
	Source
	Check(ctx context.Context) error
}

// Availability is the result of Provider.CheckAvailability.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

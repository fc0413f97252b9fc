// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// Remote catalog operations
	OpSearch   = "search"
	OpGetByID  = "get_by_id"
	OpList     = "list"
	OpCheck    = "check"
	OpByMuscle = "by_muscle"

	// Remote catalog results
	ResultSuccess      = "success"
	ResultNotFound     = "not_found"
	ResultRateLimited  = "rate_limited"
	ResultUnauthorized = "unauthorized"
	ResultFailure      = "failure"
	ResultCached       = "cached"

	// Cache lookups
	CacheHit  = "hit"
	CacheMiss = "miss"

	// Import sources
	SourceAlpha  = "alpha"
	SourceLegacy = "legacy"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymapp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymapp_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Remote catalog metrics
var (
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymapp_catalog_remote_requests_total",
			Help: "Remote exercise catalog calls by operation and result",
		},
		[]string{"op", "result"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymapp_catalog_remote_request_duration_seconds",
			Help:    "Latency of uncached remote catalog calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymapp_catalog_cache_lookups_total",
			Help: "Remote response cache lookups by result",
		},
		[]string{"result"},
	)

	CacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymapp_catalog_cache_evictions_total",
			Help: "Expired remote responses purged by the sweep",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymapp_catalog_cache_entries",
			Help: "Remote responses currently held in the cache",
		},
	)
)

// Domain metrics
var (
	RoutinesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymapp_routines_generated_total",
			Help: "Routines generated, by resolved template",
		},
		[]string{"template"},
	)

	RoutineDaysCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymapp_routine_days_completed_total",
			Help: "Routine days marked complete",
		},
	)

	WorkoutsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymapp_workouts_saved_total",
			Help: "Workout records created or replaced",
		},
	)

	ImportedWorkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymapp_imported_workouts_total",
			Help: "Workout records written by importers",
		},
		[]string{"source"},
	)
)

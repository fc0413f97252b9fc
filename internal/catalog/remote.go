package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymapp/internal/metrics"
	"github.com/claude/gymapp/internal/models"
	"golang.org/x/time/rate"
)

// DefaultHost is the RapidAPI host of the ExerciseDB service.
const DefaultHost = "exercise-db-with-videos-and-images-by-ascendapi.p.rapidapi.com"

// RemoteConfig configures the ExerciseDB client.
type RemoteConfig struct {
	APIKey            string
	Host              string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Remote is an ExerciseDB client. Responses are cached by request URL and
// outbound calls are paced by a token bucket.
type Remote struct {
	apiKey     string
	host       string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *Cache
	log        *slog.Logger
	now        func() time.Time
}

var _ RemoteSource = (*Remote)(nil)

// NewRemote creates a client. cache may be nil to disable caching.
func NewRemote(cfg RemoteConfig, cache *Cache, log *slog.Logger) *Remote {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://" + host + "/api/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Remote{
		apiKey:     cfg.APIKey,
		host:       host,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		cache:      cache,
		log:        log,
		now:        time.Now,
	}
}

// Configured reports whether an API key is set.
func (c *Remote) Configured() bool {
	return c.apiKey != ""
}

// errNotFound is internal; callers see (nil, nil).
var errNotFound = errors.New("not found")

func (c *Remote) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ErrNotConfigured)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	if c.cache != nil {
		if body, ok := c.cache.Get(u); ok {
			metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.ResultCached).Inc()
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limiter: %w", ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("exercisedb: create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.CatalogRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.ResultRateLimited).Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.ResultUnauthorized).Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.ResultNotFound).Inc()
		return nil, errNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstreamUnavailable, path, resp.StatusCode)
	}

	metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.ResultSuccess).Inc()
	if c.cache != nil {
		c.cache.Set(u, body)
	}
	return body, nil
}

// SearchPage runs a free-text search with explicit paging.
func (c *Remote) SearchPage(ctx context.Context, term string, limit, offset int) ([]models.Exercise, error) {
	return c.search(ctx, metrics.OpSearch, term, limit, offset)
}

func (c *Remote) search(ctx context.Context, op, term string, limit, offset int) ([]models.Exercise, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("limit", strconv.Itoa(pageSize(limit)))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.get(ctx, op, "/exercises/search", params)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	records, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return normalizeAll(records, c.now()), nil
}

// List returns one page of the full upstream catalog starting at offset.
func (c *Remote) List(ctx context.Context, limit, offset int) ([]models.Exercise, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageSize(limit)))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.get(ctx, metrics.OpList, "/exercises", params)
	if err != nil {
		return nil, err
	}
	records, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return normalizeAll(records, c.now()), nil
}

// Search returns the first page of upstream matches for term.
func (c *Remote) Search(ctx context.Context, term string, limit int) ([]models.Exercise, error) {
	return c.search(ctx, metrics.OpSearch, term, limit, 0)
}

// ByMuscleGroup searches by the upstream name of group.
func (c *Remote) ByMuscleGroup(ctx context.Context, group string, limit int) ([]models.Exercise, error) {
	return c.search(ctx, metrics.OpByMuscle, RemoteMuscle(group), limit, 0)
}

// Get fetches one exercise. Unknown ids return (nil, nil).
func (c *Remote) Get(ctx context.Context, id string) (*models.Exercise, error) {
	body, err := c.get(ctx, metrics.OpGetByID, "/exercises/"+url.PathEscape(id), nil)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := decodeOne(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	ex, ok := Normalize(rec, c.now())
	if !ok {
		return nil, nil
	}
	return &ex, nil
}

// Check performs a minimal request to confirm the key works and the service
// answers.
func (c *Remote) Check(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")
	_, err := c.get(ctx, metrics.OpCheck, "/exercises", params)
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%w: exercises endpoint not found", ErrUpstreamUnavailable)
	}
	return err
}

func pageSize(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/session"
)

// errNotFound marks a 404 from the REST API.
var errNotFound = errors.New("not found")

// HTTPClient implements DataSource by calling the GymApp REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := session.UserIDFromContext(ctx); ok {
		req.Header.Set(session.HeaderUserID, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) GenerateRoutine(ctx context.Context, req routine.Request, start bool) (*models.Routine, error) {
	params := url.Values{}
	if start {
		params.Set("start", "true")
	}
	var r models.Routine
	if err := c.do(ctx, http.MethodPost, "/api/v1/routine/generate", params, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ActiveRoutine returns nil when the server has no routine for the user.
func (c *HTTPClient) ActiveRoutine(ctx context.Context) (*models.Routine, error) {
	var r models.Routine
	err := c.do(ctx, http.MethodGet, "/api/v1/routine", nil, nil, &r)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) RoutineStats(ctx context.Context) (*models.RoutineStats, error) {
	var s models.RoutineStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/routine/stats", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) CompleteDay(ctx context.Context, day models.DayAddress, workoutID string) (*models.Routine, error) {
	body := map[string]any{"day": day, "workout_id": workoutID}
	var r models.Routine
	if err := c.do(ctx, http.MethodPost, "/api/v1/routine/complete", nil, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) ListTemplates(ctx context.Context, goal, level string, days int) ([]models.TemplateSummary, error) {
	params := url.Values{}
	if goal != "" {
		params.Set("goal", goal)
	}
	if level != "" {
		params.Set("level", level)
	}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var list []models.TemplateSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/templates", params, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) SearchExercises(ctx context.Context, term string, limit int) ([]models.Exercise, error) {
	params := url.Values{"q": {term}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var list []models.Exercise
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises", params, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetExercise returns nil for unknown ids.
func (c *HTTPClient) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	var e models.Exercise
	err := c.do(ctx, http.MethodGet, "/api/v1/exercises/"+url.PathEscape(id), nil, nil, &e)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context) ([]models.WorkoutRecord, error) {
	var list []models.WorkoutRecord
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) WorkoutSummary(ctx context.Context) (*models.WorkoutSummary, error) {
	var s models.WorkoutSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts/summary", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

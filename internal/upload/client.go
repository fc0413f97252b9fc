package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/gymapp/internal/ingest"
)

// errPermanent marks a response that retrying cannot fix.
var errPermanent = errors.New("rejected by server")

// Client sends export files to a GymApp server's import endpoints.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the GymApp server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendOptions are passed through as import query parameters.
type SendOptions struct {
	UserID string
	DryRun bool
}

// SendExport POSTs an export to /api/v1/import/{source}. Network errors and
// 5xx responses are retried up to 3 times with exponential backoff; other
// failures return at once.
func (c *Client) SendExport(ctx context.Context, source string, data []byte, opts SendOptions) (*ingest.Result, error) {
	params := url.Values{}
	if opts.UserID != "" {
		params.Set("user_id", opts.UserID)
	}
	if opts.DryRun {
		params.Set("dry_run", "true")
	}
	u := c.serverURL + "/api/v1/import/" + source
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff << uint(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		res, err := c.post(ctx, u, data)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, errPermanent) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, u string, data []byte) (*ingest.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPermanent, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var res ingest.Result
		if err := json.Unmarshal(body, &res); err != nil {
			return nil, fmt.Errorf("%w: decoding result: %v", errPermanent, err)
		}
		return &res, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	default:
		return nil, fmt.Errorf("%w (status %d): %s", errPermanent, resp.StatusCode, body)
	}
}

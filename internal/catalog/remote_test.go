package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRemote(t *testing.T, h http.HandlerFunc) (*Remote, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(ts.Close)

	r := NewRemote(RemoteConfig{
		APIKey:  "test-key",
		Host:    "exercisedb.test",
		BaseURL: ts.URL + "/api/v1",
	}, NewCache(1024*1024, 50*time.Minute), discardLogger())
	return r, &calls
}

// TestRemoteSendsHeadersAndParams verifies the RapidAPI headers and search
// query parameters.
func TestRemoteSendsHeadersAndParams(t *testing.T) {
	r, _ := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/v1/exercises/search" {
			t.Errorf("path = %s", req.URL.Path)
		}
		if got := req.Header.Get("X-RapidAPI-Key"); got != "test-key" {
			t.Errorf("X-RapidAPI-Key = %q", got)
		}
		if got := req.Header.Get("X-RapidAPI-Host"); got != "exercisedb.test" {
			t.Errorf("X-RapidAPI-Host = %q", got)
		}
		q := req.URL.Query()
		if q.Get("search") != "chest" || q.Get("limit") != "5" || q.Get("offset") != "10" {
			t.Errorf("query = %v", q)
		}
		_, _ = io.WriteString(w, `{"exercises":[{"id":"x1","name":"Cable Fly","targetMuscle":"chest"}]}`)
	})

	list, err := r.SearchPage(context.Background(), "chest", 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].MuscleGroup != "pecho" || list[0].Source != SourceExerciseDB {
		t.Errorf("list = %+v", list)
	}
}

// TestRemoteListPages verifies the paging parameters of a catalog listing.
func TestRemoteListPages(t *testing.T) {
	r, _ := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/v1/exercises" {
			t.Errorf("path = %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("limit") != "2" || q.Get("offset") != "4" {
			t.Errorf("query = %v", q)
		}
		_, _ = io.WriteString(w, `[{"id":"x5","name":"Dip","bodyPart":"chest"},{"id":"x6","title":"Row"}]`)
	})

	list, err := r.List(context.Background(), 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "x5" || list[1].Name != "Row" {
		t.Errorf("list = %+v", list)
	}
}

// TestRemoteCachesByURL verifies a repeated request is served from cache.
func TestRemoteCachesByURL(t *testing.T) {
	r, calls := newTestRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"x1"}]`)
	})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := r.Search(ctx, "row", 10); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := r.Search(ctx, "curl", 10); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

// TestRemoteStatusMapping verifies how upstream status codes are reported.
func TestRemoteStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusInternalServerError, ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		r, _ := newTestRemote(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := r.Get(context.Background(), "x1")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: error = %v, want %v", tt.status, err, tt.want)
		}
		if !errors.Is(err, ErrUpstreamUnavailable) {
			t.Errorf("status %d: error does not wrap ErrUpstreamUnavailable", tt.status)
		}
	}
}

// TestRemoteGetNotFound verifies a 404 is a not-found result, not an error.
func TestRemoteGetNotFound(t *testing.T) {
	r, _ := newTestRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	ex, err := r.Get(context.Background(), "missing")
	if err != nil || ex != nil {
		t.Errorf("Get(missing) = %v, %v, want nil, nil", ex, err)
	}
}

// TestRemoteGetUnwrapsData verifies single records nested under "data".
func TestRemoteGetUnwrapsData(t *testing.T) {
	r, _ := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/v1/exercises/x9" {
			t.Errorf("path = %s", req.URL.Path)
		}
		_, _ = io.WriteString(w, `{"data":{"id":"x9","title":"Hip Thrust","target":"glutes"}}`)
	})
	ex, err := r.Get(context.Background(), "x9")
	if err != nil || ex == nil {
		t.Fatalf("Get = %v, %v", ex, err)
	}
	if ex.Name != "Hip Thrust" || ex.MuscleGroup != "gluteos" {
		t.Errorf("exercise = %+v", ex)
	}
}

// TestRemoteUnconfigured verifies no request is made without an API key.
func TestRemoteUnconfigured(t *testing.T) {
	r := NewRemote(RemoteConfig{BaseURL: "http://127.0.0.1:1"}, nil, discardLogger())
	if r.Configured() {
		t.Fatal("Configured() = true without key")
	}
	err := r.Check(context.Background())
	if !errors.Is(err, ErrNotConfigured) || !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("Check error = %v", err)
	}
}

// TestRemoteByMuscleGroupTranslates verifies local groups are sent in the
// upstream vocabulary.
func TestRemoteByMuscleGroupTranslates(t *testing.T) {
	r, _ := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if got := req.URL.Query().Get("search"); got != "back" {
			t.Errorf("search = %q, want back", got)
		}
		_, _ = io.WriteString(w, `{"data":[]}`)
	})
	if _, err := r.ByMuscleGroup(context.Background(), "espalda", 5); err != nil {
		t.Fatal(err)
	}
}

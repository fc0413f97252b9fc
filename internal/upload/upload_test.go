package upload

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/claude/gymapp/internal/ingest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// TestDetectSource verifies format detection by extension.
func TestDetectSource(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"export.csv", "alpha", true},
		{"Backup.JSON", "legacy", true},
		{"notes.txt", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectSource(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DetectSource(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

// TestCollect verifies directories are expanded to known export files.
func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", "{}")
	writeFile(t, dir, "a.csv", "")
	writeFile(t, dir, "readme.md", "")

	files, err := Collect(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.csv" {
		t.Errorf("files = %v", files)
	}
}

// TestClientRetries verifies 5xx responses are retried and the API key is sent.
func TestClientRetries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/import/alpha" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "k" {
			t.Errorf("api key = %q", got)
		}
		if got := r.URL.Query().Get("user_id"); got != "u1" {
			t.Errorf("user_id = %q", got)
		}
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(ingest.Result{WorkoutsSaved: 3})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "k")
	c.backoff = 0
	res, err := c.SendExport(context.Background(), "alpha", []byte("csv"), SendOptions{UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.WorkoutsSaved != 3 || calls.Load() != 2 {
		t.Errorf("saved = %d after %d calls", res.WorkoutsSaved, calls.Load())
	}
}

// TestClientNoRetryOnReject verifies 4xx responses fail immediately.
func TestClientNoRetryOnReject(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "bad")
	c.backoff = 0
	if _, err := c.SendExport(context.Background(), "legacy", []byte("{}"), SendOptions{}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

// TestRunSkipsSentFiles verifies the state database prevents re-sending
// unchanged files.
func TestRunSkipsSentFiles(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(ingest.Result{SessionsReceived: 1, WorkoutsSaved: 1})
	}))
	defer ts.Close()

	dir := t.TempDir()
	file := writeFile(t, dir, "export.csv", "data")
	state, err := OpenStateDB(filepath.Join(dir, "state"))
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	for i, want := range []Stats{
		{FilesTotal: 1, FilesUploaded: 1, WorkoutsSaved: 1},
		{FilesTotal: 1, FilesSkipped: 1},
	} {
		u := New(NewClient(ts.URL, "k"), state, Options{}, discardLogger())
		got, err := u.Run(context.Background(), []string{file})
		if err != nil {
			t.Fatal(err)
		}
		if *got != want {
			t.Errorf("run %d stats = %+v, want %+v", i+1, *got, want)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}

	// A changed file is new content.
	writeFile(t, dir, "export.csv", "more data")
	u := New(NewClient(ts.URL, "k"), state, Options{}, discardLogger())
	if got, _ := u.Run(context.Background(), []string{file}); got.FilesUploaded != 1 {
		t.Errorf("changed file stats = %+v", got)
	}
}

// TestRunCountsErrors verifies unknown formats are counted, not fatal.
func TestRunCountsErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "notes.txt", "x")
	u := New(NewClient("http://127.0.0.1:0", "k"), nil, Options{}, discardLogger())
	got, err := u.Run(context.Background(), []string{file})
	if err != nil {
		t.Fatal(err)
	}
	if got.FilesErrored != 1 {
		t.Errorf("stats = %+v", got)
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/session"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestGenerateRoutine verifies the request body, the start flag and the
// pinned user header.
func TestGenerateRoutine(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/routine/generate": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.URL.Query().Get("start"); got != "true" {
				t.Errorf("start=%q, want true", got)
			}
			if got := r.Header.Get(session.HeaderUserID); got != "user-9" {
				t.Errorf("user header = %q, want user-9", got)
			}
			var req routine.Request
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatal(err)
			}
			if req.Goal != "fuerza" || req.DaysPerWeek != 3 {
				t.Errorf("request = %+v", req)
			}
			writeTestJSON(t, w, models.Routine{TemplateKey: "fuerza-3dias"})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL + "/")
	ctx := session.WithUserID(context.Background(), "user-9")
	r, err := client.GenerateRoutine(ctx, routine.Request{Goal: "fuerza", Level: "intermedio", DaysPerWeek: 3}, true)
	if err != nil {
		t.Fatal(err)
	}
	if r.TemplateKey != "fuerza-3dias" {
		t.Errorf("template = %q", r.TemplateKey)
	}
}

// TestActiveRoutineNotFound verifies a 404 maps to no routine.
func TestActiveRoutineNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/routine": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			writeTestJSON(t, w, map[string]string{"error": "active routine not found"})
		},
	})
	defer ts.Close()

	r, err := NewHTTPClient(ts.URL).ActiveRoutine(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Errorf("routine = %+v, want nil", r)
	}
}

// TestCompleteDayBody verifies the day address is sent in its JSON form.
func TestCompleteDayBody(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/routine/complete": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["day"] != "Día B" || body["workout_id"] != "42" {
				t.Errorf("body = %v", body)
			}
			writeTestJSON(t, w, models.Routine{Name: "x"})
		},
	})
	defer ts.Close()

	if _, err := NewHTTPClient(ts.URL).CompleteDay(context.Background(), models.ByName("Día B"), "42"); err != nil {
		t.Fatal(err)
	}
}

// TestAPIErrorMessage verifies the server's error message is surfaced.
func TestAPIErrorMessage(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/routine/stats": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			writeTestJSON(t, w, map[string]string{"error": "no active routine"})
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).RoutineStats(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "GET /api/v1/routine/stats returned 409: no active routine" {
		t.Errorf("error = %q", got)
	}
}

// TestSearchAndTemplatesParams verifies query parameters.
func TestSearchAndTemplatesParams(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("q"); got != "press" {
				t.Errorf("q=%q, want press", got)
			}
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, []models.Exercise{{ID: "press-banca"}})
		},
		"/api/v1/templates": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("goal") != "fuerza" || q.Get("days") != "4" || q.Has("level") {
				t.Errorf("query = %v", q)
			}
			writeTestJSON(t, w, []models.TemplateSummary{{Key: "fuerza-4dias"}})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	list, err := client.SearchExercises(context.Background(), "press", 5)
	if err != nil || len(list) != 1 {
		t.Fatalf("search = %v, %v", list, err)
	}
	tpls, err := client.ListTemplates(context.Background(), "fuerza", "", 4)
	if err != nil || len(tpls) != 1 {
		t.Fatalf("templates = %v, %v", tpls, err)
	}
}

// TestClientExerciseNotFound verifies unknown exercises map to nil.
func TestClientExerciseNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises/remote:0001": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
	})
	defer ts.Close()

	e, err := NewHTTPClient(ts.URL).GetExercise(context.Background(), "remote:0001")
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Errorf("exercise = %+v, want nil", e)
	}
}

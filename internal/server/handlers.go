package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/gymapp/internal/catalog"
	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
	"github.com/claude/gymapp/internal/session"
)

const maxBodyBytes = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve), errors.Is(err, session.ErrInvalidPIN):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNoCurrentUser):
		status = http.StatusUnauthorized
	case errors.Is(err, session.ErrWrongPIN):
		status = http.StatusForbidden
	case errors.Is(err, session.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNameTaken), errors.Is(err, routine.ErrNoActiveRoutine):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeNotFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Invalid("body", "invalid JSON: %v", err)
	}
	return nil
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, models.Invalid(name, "%q is not an integer", v)
	}
	return n, nil
}

// boolParam parses an optional boolean query parameter.
func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, models.Invalid(name, "%q is not a boolean", v)
	}
	return b, nil
}

func deletedResponse(n int64) map[string]int64 {
	return map[string]int64{"deleted": n}
}

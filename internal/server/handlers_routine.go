package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/routine"
)

// completeDayRequest holds Day as a pointer so an omitted or null day is
// told apart from index 0.
type completeDayRequest struct {
	Day       *models.DayAddress `json:"day"`
	WorkoutID models.RecordID    `json:"workout_id"`
}

func (req completeDayRequest) validate() error {
	if req.Day == nil {
		return models.Invalid("day", "is required")
	}
	if req.WorkoutID == "" {
		return models.Invalid("workout_id", "is required")
	}
	return nil
}

// handleGetRoutine returns 404 when the current user has no active routine.
func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	rt, err := s.svc.Tracker.Active(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rt == nil {
		writeNotFound(w, "active routine")
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (s *Server) handleStartRoutine(w http.ResponseWriter, r *http.Request) {
	var rt models.Routine
	if err := decodeJSON(w, r, &rt); err != nil {
		s.writeError(w, r, err)
		return
	}
	started, err := s.svc.Tracker.Start(r.Context(), &rt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, started)
}

func (s *Server) handleFinalizeRoutine(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tracker.Finalize(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerateRoutine builds a routine from the request. With ?start=true
// the result also becomes the active routine.
func (s *Server) handleGenerateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routine.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	start, err := boolParam(r, "start")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rt := s.svc.Generator.Generate(req)
	if !start {
		writeJSON(w, http.StatusOK, rt)
		return
	}
	started, err := s.svc.Tracker.Start(r.Context(), rt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, started)
}

func (s *Server) handleCompleteDay(w http.ResponseWriter, r *http.Request) {
	var req completeDayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	rt, err := s.svc.Tracker.MarkDayComplete(r.Context(), *req.Day, string(req.WorkoutID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (s *Server) handleRoutineStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Tracker.Statistics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	list := s.svc.Templates.Filter(q.Get("goal"), q.Get("level"), days)
	if list == nil {
		list = []models.TemplateSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.svc.Templates.Get(chi.URLParam(r, "key"))
	if !ok {
		writeNotFound(w, "template")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

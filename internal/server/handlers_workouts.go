package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/gymapp/internal/models"
)

func recordIDParam(r *http.Request) models.RecordID {
	return models.RecordID(chi.URLParam(r, "id"))
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.Workouts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []models.WorkoutRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleSaveWorkout(w http.ResponseWriter, r *http.Request) {
	var rec models.WorkoutRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.svc.Workouts.Save(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Workouts.Get(r.Context(), recordIDParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec == nil {
		writeNotFound(w, "workout")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var patch models.WorkoutPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Workouts.Update(r.Context(), recordIDParam(r), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec == nil {
		writeNotFound(w, "workout")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteWorkout is idempotent: deleting an absent record reports zero.
func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Workouts.Delete(r.Context(), recordIDParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse(n))
}

func (s *Server) handleWorkoutSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Workouts.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

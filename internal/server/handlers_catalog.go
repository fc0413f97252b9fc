package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/claude/gymapp/internal/models"
)

const defaultSearchLimit = 20

// handleListExercises searches with ?q, filters by ?equipment (comma
// separated), or lists the local catalog.
func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultSearchLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()

	var list []models.Exercise
	switch {
	case q.Get("q") != "":
		list = s.svc.Catalog.Search(r.Context(), q.Get("q"), limit)
	case q.Get("equipment") != "":
		list = s.svc.Catalog.ByEquipment(splitList(q.Get("equipment")))
	default:
		list = s.svc.Catalog.Local().All()
	}
	if list == nil {
		list = []models.Exercise{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Catalog.MuscleGroups())
}

func (s *Server) handleExercisesByMuscle(w http.ResponseWriter, r *http.Request) {
	remote, err := boolParam(r, "remote")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list := s.svc.Catalog.ListByMuscleGroup(r.Context(), chi.URLParam(r, "group"), remote)
	if list == nil {
		list = []models.Exercise{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetExercise reports upstream failures as 502 so clients can tell
// them apart from unknown ids.
func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := s.svc.Catalog.LookupByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if ex == nil {
		writeNotFound(w, "exercise")
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleSimilarExercises(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 5)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Catalog.Similar(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if list == nil {
		list = []models.Exercise{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCatalogStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Catalog.CheckAvailability(r.Context()))
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

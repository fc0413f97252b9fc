package server

import (
	"errors"
	"net/http"

	"github.com/claude/gymapp/internal/ingest"
	"github.com/claude/gymapp/internal/models"
)

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	dryRun, err := boolParam(r, "dry_run")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	res, err := s.svc.Alpha.Ingest(r.Context(), r.Body, r.URL.Query().Get("user_id"), dryRun)
	if err != nil {
		s.writeImportError(w, r, res, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLegacyImport(w http.ResponseWriter, r *http.Request) {
	dryRun, err := boolParam(r, "dry_run")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	res, err := s.svc.Legacy.Import(r.Context(), r.Body, dryRun)
	if err != nil {
		s.writeImportError(w, r, res, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeImportError treats a run that produced no result as a bad upload.
// Failures after a partial run keep the usual error mapping.
func (s *Server) writeImportError(w http.ResponseWriter, r *http.Request, res *ingest.Result, err error) {
	var ve *models.ValidationError
	if res == nil && !errors.As(err, &ve) && !errors.Is(err, models.ErrNoCurrentUser) {
		s.log.Warn("import rejected", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.writeError(w, r, err)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 50)
	if err != nil || limit <= 0 {
		limit = 50
	}
	logs, err := s.svc.ImportLogs.QueryImportLogs(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []models.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

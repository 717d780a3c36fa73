package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dstockton/storeaudit/internal/core"
)

// handleListAudits returns all recorded audit sessions, newest first.
// Answers are omitted; fetch a single session for the full detail.
func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.Sessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audits")
		return
	}
	if sessions == nil {
		sessions = []core.AuditSession{}
	}
	writeJSON(w, sessions)
}

// handleRecordAudit persists a completed audit session with its answers.
// Score aggregates are recomputed server-side from the answers.
func (s *Server) handleRecordAudit(w http.ResponseWriter, r *http.Request) {
	var session core.AuditSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(session.DepartmentName) == "" {
		writeError(w, http.StatusBadRequest, "department_name is required")
		return
	}
	for _, a := range session.Answers {
		switch a.Answer {
		case core.AnswerValueYes, core.AnswerValueNo, core.AnswerValuePartial, core.AnswerValueSkipped:
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid answer value %q", a.Answer))
			return
		}
	}

	created, err := s.service.RecordAudit(r.Context(), session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record audit")
		return
	}

	writeJSONStatus(w, http.StatusCreated, created)
}

// handleGetAudit returns one audit session with its answers.
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	session, err := s.service.Session(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	writeJSON(w, session)
}

// setCSVHeaders marks the response as a CSV attachment.
func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv;charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

// handleExportQuestions downloads the full question catalog as CSV.
// The export is built in memory so a store failure still produces a clean
// JSON error instead of a half-written attachment.
func (s *Server) handleExportQuestions(w http.ResponseWriter, r *http.Request) {
	var buf strings.Builder
	if err := s.service.WriteQuestionExport(r.Context(), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export questions")
		return
	}

	setCSVHeaders(w, core.QuestionExportFilename)
	fmt.Fprint(w, buf.String())
}

// handleExportHistory downloads the audit session history as CSV.
func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	var buf strings.Builder
	if err := s.service.WriteHistoryExport(r.Context(), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export history")
		return
	}

	setCSVHeaders(w, core.HistoryExportFilename)
	fmt.Fprint(w, buf.String())
}

// handleExportAuditDetail downloads a single audit's detail CSV. The
// filename carries the department slug and audit date.
func (s *Server) handleExportAuditDetail(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	// Build the export in memory first: the filename comes from the
	// session, and a load failure must still produce a clean JSON error.
	var buf strings.Builder
	filename, err := s.service.WriteAuditDetailExport(r.Context(), sessionID, &buf)
	if err != nil {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}

	setCSVHeaders(w, filename)
	fmt.Fprint(w, buf.String())
}

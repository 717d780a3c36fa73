package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dstockton/storeaudit/internal/core"
	"github.com/dstockton/storeaudit/internal/logging"
)

// readUploadedCSV extracts the CSV text from a multipart upload, enforcing
// the configured size cap.
func (s *Server) readUploadedCSV(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return "", "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return "", "", false
	}

	return string(data), header.Filename, true
}

// handleImportPreview parses an uploaded question CSV and returns the full
// parse result without touching the catalog. Validation failures are data
// in the result, not an HTTP error.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	text, _, ok := s.readUploadedCSV(w, r)
	if !ok {
		return
	}

	result := core.ParseQuestionsCSV(text)
	writeJSON(w, result)
}

// handleStartImport parses an uploaded question CSV and begins an
// asynchronous import of the valid rows. Returns the import ID; progress is
// streamed from the SSE endpoint.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	text, fileName, ok := s.readUploadedCSV(w, r)
	if !ok {
		return
	}

	result := core.ParseQuestionsCSV(text)
	if len(result.Questions) == 0 {
		// Nothing importable; hand back the diagnostics so the client can
		// show why.
		writeJSONStatus(w, http.StatusUnprocessableEntity, result)
		return
	}

	importID, err := s.service.StartImport(r.Context(), fileName, result.Questions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logging.FromContext(r.Context()).Info("import started",
		"import_id", importID,
		"file", fileName,
		"rows", len(result.Questions),
	)

	writeJSON(w, map[string]any{
		"import_id": importID,
		"total":     len(result.Questions),
		"errors":    result.Errors,
		"warnings":  result.Warnings,
	})
}

// handleImportProgress streams import progress via Server-Sent Events.
// Supports resumption via lastEventId query parameter for reconnection.
func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")
	if importID == "" {
		writeError(w, http.StatusBadRequest, "missing import ID")
		return
	}

	// The event ID is the progress percentage, allowing clients to skip
	// already-received events after reconnection
	lastEventIDStr := r.URL.Query().Get("lastEventId")
	var lastEventID int
	if lastEventIDStr != "" {
		lastEventID, _ = strconv.Atoi(lastEventIDStr)
	}

	progressCh, err := s.service.SubscribeProgress(importID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				// Channel closed - import finished or was cancelled
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			currentPercent := progress.Percent()

			// Skip events that were already sent (for resumption)
			if lastEventIDStr != "" && currentPercent <= lastEventID {
				continue
			}

			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", currentPercent, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleImportResult returns the final summary of a finished import.
func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")
	if importID == "" {
		writeError(w, http.StatusBadRequest, "missing import ID")
		return
	}

	summary, err := s.service.Result(importID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, summary)
}

// handleCancelImport cancels an in-progress import.
func (s *Server) handleCancelImport(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")
	if importID == "" {
		writeError(w, http.StatusBadRequest, "missing import ID")
		return
	}

	if err := s.service.CancelImport(importID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"cancelled"}`))
}

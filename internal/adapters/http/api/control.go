// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ControlHandler handles reset and ingestion start/stop requests.
type ControlHandler struct {
	control Control
}

// NewControlHandler creates a new control handler.
func NewControlHandler(control Control) *ControlHandler {
	return &ControlHandler{control: control}
}

// HandleReset handles POST /api/reset requests.
func (h *ControlHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.control.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "reset"})
}

// HandleIngestStart handles POST /api/ingest/start requests.
func (h *ControlHandler) HandleIngestStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.control.StartIngest(r.Context()); err != nil {
		writeError(w, http.StatusConflict, "ingest_start_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ingesting"})
}

// HandleIngestStop handles POST /api/ingest/stop requests.
func (h *ControlHandler) HandleIngestStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.control.StopIngest(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "ingest_stop_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "stopped"})
}

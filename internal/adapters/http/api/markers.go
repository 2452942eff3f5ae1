// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/robotat/mocapd/internal/adapters/repository"
	"github.com/robotat/mocapd/internal/domain/model"
)

// MarkersHandler handles marker listing and per-marker subresources.
type MarkersHandler struct {
	store repository.Store
}

// NewMarkersHandler creates a new markers handler.
func NewMarkersHandler(store repository.Store) *MarkersHandler {
	return &MarkersHandler{store: store}
}

// HandleList handles GET /api/markers requests.
func (h *MarkersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Summaries(r.Context()))
}

// HandleMarker dispatches /api/markers/{id}/{subresource} requests.
func (h *MarkersHandler) HandleMarker(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/markers/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	markerID, sub := parts[0], parts[1]

	switch {
	case r.Method == http.MethodGet && sub == "history":
		h.handleHistory(w, r, markerID)
	case r.Method == http.MethodGet && sub == "trajectory":
		h.handleTrajectory(w, r, markerID)
	case r.Method == http.MethodPost && sub == "visibility":
		h.handleVisibility(w, r, markerID)
	case r.Method == http.MethodPost && sub == "figure":
		h.handleFigure(w, r, markerID)
	default:
		http.NotFound(w, r)
	}
}

func (h *MarkersHandler) handleHistory(w http.ResponseWriter, r *http.Request, markerID string) {
	if !h.known(r, markerID) {
		writeError(w, http.StatusNotFound, "not_found", repository.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.store.HistorySnapshot(r.Context(), markerID))
}

func (h *MarkersHandler) handleTrajectory(w http.ResponseWriter, r *http.Request, markerID string) {
	if !h.known(r, markerID) {
		writeError(w, http.StatusNotFound, "not_found", repository.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.store.TrajectorySnapshot(r.Context(), markerID))
}

// visibilityRequest toggles one chart kind for a marker.
type visibilityRequest struct {
	Kind    model.ChartKind `json:"kind"`
	Visible bool            `json:"visible"`
}

func (h *MarkersHandler) handleVisibility(w http.ResponseWriter, r *http.Request, markerID string) {
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "bad_kind", repository.ErrUnknownKind)
		return
	}
	if err := h.store.SetVisibility(r.Context(), markerID, req.Kind, req.Visible); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// figureRequest flags one chart figure as maximized.
type figureRequest struct {
	Kind      model.ChartKind `json:"kind"`
	Maximized bool            `json:"maximized"`
}

func (h *MarkersHandler) handleFigure(w http.ResponseWriter, r *http.Request, markerID string) {
	var req figureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "bad_kind", repository.ErrUnknownKind)
		return
	}
	if err := h.store.SetMaximized(r.Context(), markerID, req.Kind, req.Maximized); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *MarkersHandler) known(r *http.Request, markerID string) bool {
	_, err := h.store.Summary(r.Context(), markerID)
	return err == nil
}

func (h *MarkersHandler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, "bad_kind", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

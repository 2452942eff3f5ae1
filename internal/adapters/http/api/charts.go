// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/robotat/mocapd/internal/adapters/render"
	"github.com/robotat/mocapd/internal/adapters/repository"
	"github.com/robotat/mocapd/internal/domain/model"
)

// ChartsHandler serves the latest rendered surface per (marker, kind) pair.
type ChartsHandler struct {
	store    repository.Store
	surfaces *render.SurfaceTable
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(store repository.Store, surfaces *render.SurfaceTable) *ChartsHandler {
	return &ChartsHandler{store: store, surfaces: surfaces}
}

// HandleChart handles GET /charts/{id}/{kind} requests.
func (h *ChartsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/charts/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	markerID, kind := parts[0], model.ChartKind(parts[1])
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "bad_kind", repository.ErrUnknownKind)
		return
	}

	// A hidden pair is not served even if a stale surface still exists.
	vis, ok := h.store.Visibility(r.Context(), markerID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", repository.ErrNotFound)
		return
	}
	if !vis.Enabled(kind) {
		writeError(w, http.StatusNotFound, "hidden", repository.ErrNotFound)
		return
	}

	surface, ok := h.surfaces.Get(render.Key{MarkerID: markerID, Kind: kind})
	if !ok {
		writeError(w, http.StatusNotFound, "not_rendered", repository.ErrNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(surface.HTML)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/robotat/mocapd/internal/adapters/export"
)

// Exporter defines the interface for export downloads.
type Exporter interface {
	Export(ctx context.Context, format export.Format) (body []byte, filename string, err error)
}

// ExportHandler handles export download requests.
type ExportHandler struct {
	exporter Exporter
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exporter Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// HandleCSV handles GET /api/export/csv requests.
func (h *ExportHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, export.FormatCSV, "text/csv; charset=utf-8")
}

// HandleJSON handles GET /api/export/json requests.
func (h *ExportHandler) HandleJSON(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, export.FormatJSON, "application/json; charset=utf-8")
}

func (h *ExportHandler) handle(w http.ResponseWriter, r *http.Request, format export.Format, contentType string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	body, filename, err := h.exporter.Export(r.Context(), format)
	if err != nil {
		if errors.Is(err, export.ErrNoData) {
			// Nothing accumulated yet; no artifact is produced.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, http.StatusInternalServerError, "export_failed", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

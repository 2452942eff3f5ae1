// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/robotat/mocapd/internal/adapters/render"
	"github.com/robotat/mocapd/internal/adapters/repository"
)

// Control is the pipeline control surface the API drives. Using an interface
// bundle keeps the handler layer loosely coupled to the application service.
type Control interface {
	// StartIngest resumes broker consumption without touching accumulated state.
	StartIngest(ctx context.Context) error

	// StopIngest pauses broker consumption without touching accumulated state.
	StopIngest(ctx context.Context) error

	// Reset atomically clears stats, registry, markers, and surfaces.
	Reset(ctx context.Context) error
}

// Server wires HTTP routes for the operator API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	markersHandler   *MarkersHandler
	controlHandler   *ControlHandler
	exportHandler    *ExportHandler
	chartsHandler    *ChartsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(
	store repository.Store,
	surfaces *render.SurfaceTable,
	statsProvider StatsProvider,
	control Control,
	exporter Exporter,
) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		markersHandler:   NewMarkersHandler(store),
		controlHandler:   NewControlHandler(control),
		exportHandler:    NewExportHandler(exporter),
		chartsHandler:    NewChartsHandler(store, surfaces),
		dashboardHandler: newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metricz", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/api/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/markers", MetricsMiddleware(s.markersHandler.HandleList, "markers"))
	mux.HandleFunc("/api/markers/", MetricsMiddleware(s.markersHandler.HandleMarker, "marker"))
	mux.HandleFunc("/api/reset", MetricsMiddleware(s.controlHandler.HandleReset, "reset"))
	mux.HandleFunc("/api/ingest/start", MetricsMiddleware(s.controlHandler.HandleIngestStart, "ingest_start"))
	mux.HandleFunc("/api/ingest/stop", MetricsMiddleware(s.controlHandler.HandleIngestStop, "ingest_stop"))
	mux.HandleFunc("/api/export/csv", MetricsMiddleware(s.exportHandler.HandleCSV, "export_csv"))
	mux.HandleFunc("/api/export/json", MetricsMiddleware(s.exportHandler.HandleJSON, "export_json"))
	mux.HandleFunc("/charts/", MetricsMiddleware(s.chartsHandler.HandleChart, "charts"))
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

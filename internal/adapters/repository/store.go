// Package repository defines the marker state store interface and errors.
package repository

import (
	"context"

	"github.com/robotat/mocapd/internal/domain/model"
)

// Summary is the per-marker digest exposed to the operator API.
type Summary struct {
	MarkerID       string           `json:"markerId"`
	Samples        int              `json:"samples"`
	LastSeen       int64            `json:"lastSeen"` // ms since epoch, 0 when empty
	MeanVelocity   float64          `json:"meanVelocity"`
	MaxVelocity    float64          `json:"maxVelocity"`
	StddevVelocity float64          `json:"stddevVelocity"`
	Visibility     model.Visibility `json:"visibility"`
}

// Store provides read/write access to per-marker accumulated state.
//
// All writes happen through Upsert and Reset; every read returns a copy so
// the render scheduler and exporter never observe in-place mutation.
type Store interface {
	// Upsert records an accepted sample for its marker, creating the record
	// and a default all-visible entry on first sight. It returns the sample
	// with its computed velocity filled in.
	Upsert(ctx context.Context, s model.Sample) model.Sample

	// Markers returns the known marker ids in first-seen order.
	Markers(ctx context.Context) []string

	// HistorySnapshot returns the marker's history, most-recent-first.
	HistorySnapshot(ctx context.Context, markerID string) []model.Sample

	// TrajectorySnapshot returns the marker's trajectory, oldest-first.
	TrajectorySnapshot(ctx context.Context, markerID string) []model.TrajectoryPoint

	// AllValidSamples returns every stored sample across all markers,
	// concatenated in marker first-seen order, most-recent-first per marker.
	AllValidSamples(ctx context.Context) []model.Sample

	// Visibility returns the marker's chart toggles. The second return is
	// false for unknown markers.
	Visibility(ctx context.Context, markerID string) (model.Visibility, bool)

	// SetVisibility toggles one chart kind for a marker.
	SetVisibility(ctx context.Context, markerID string, kind model.ChartKind, visible bool) error

	// SetMaximized flags a figure as maximized. Presentation state only.
	SetMaximized(ctx context.Context, markerID string, kind model.ChartKind, maximized bool) error

	// Maximized reports the figure flag for a (marker, kind) pair.
	Maximized(ctx context.Context, markerID string, kind model.ChartKind) bool

	// Summary returns the digest for one marker, ErrNotFound when unknown.
	Summary(ctx context.Context, markerID string) (Summary, error)

	// Summaries returns digests for all markers in first-seen order.
	Summaries(ctx context.Context) []Summary

	// Count returns the number of markers tracked.
	Count(ctx context.Context) int

	// Reset clears all marker records, visibility entries, and figure states.
	Reset(ctx context.Context)
}

// Package render periodically turns marker snapshots into chart surfaces.
//
// Renderers are pure: they take a snapshot and produce a standalone HTML
// document. The scheduler owns the surface table and swaps documents in on
// every tick; HTTP handlers only ever read the latest surface.
package render

import (
	"time"

	"github.com/robotat/mocapd/internal/domain/model"
)

// Shared chart dimensions.
const (
	chartWidth  = "600px"
	chartHeight = "600px"
)

// Snapshot is the read-only per-marker state handed to a renderer.
type Snapshot struct {
	MarkerID   string
	History    []model.Sample          // most-recent-first
	Trajectory []model.TrajectoryPoint // oldest-first
	Now        time.Time
}

// Renderer produces one chart kind from a marker snapshot.
type Renderer interface {
	// Kind identifies the chart this renderer produces.
	Kind() model.ChartKind

	// Render builds a standalone HTML document for the snapshot.
	Render(snap Snapshot) ([]byte, error)
}

// Renderers returns the full renderer set, one per chart kind.
func Renderers() []Renderer {
	return []Renderer{
		NewXYRenderer(),
		NewHeightRenderer(),
		NewVelocityRenderer(),
	}
}

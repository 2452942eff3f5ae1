package render

import (
	"context"
	"time"

	"github.com/robotat/mocapd/internal/domain/model"
	"github.com/robotat/mocapd/pkg/logger"
	"github.com/robotat/mocapd/pkg/metrics"
)

// Default scheduler configuration constants.
const (
	defaultPeriod = 200 * time.Millisecond
)

// Store is the read surface the scheduler snapshots on every tick.
type Store interface {
	Markers(ctx context.Context) []string
	Visibility(ctx context.Context, markerID string) (model.Visibility, bool)
	HistorySnapshot(ctx context.Context, markerID string) []model.Sample
	TrajectorySnapshot(ctx context.Context, markerID string) []model.TrajectoryPoint
}

// Scheduler re-renders every visible (marker, kind) pair on a fixed period,
// independent of ingestion. A failing or panicking renderer skips its pair
// for the tick and never takes the loop down.
type Scheduler struct {
	store     Store
	surfaces  *SurfaceTable
	renderers map[model.ChartKind]Renderer
	period    time.Duration
	now       func() time.Time

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewScheduler creates a scheduler over the given store and surface table.
func NewScheduler(store Store, surfaces *SurfaceTable, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:     store,
		surfaces:  surfaces,
		renderers: make(map[model.ChartKind]Renderer),
		period:    defaultPeriod,
		now:       time.Now,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Named("render"),
	}
	for _, r := range Renderers() {
		s.renderers[r.Kind()] = r
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ticks until ctx is canceled or Shutdown is called.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Shutdown stops the tick loop and waits for the current tick to finish.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	close(s.shutdown)

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "shutdown timed out")
		return ctx.Err()
	}
}

// tick renders every visible (marker, kind) pair once.
func (s *Scheduler) tick(ctx context.Context) {
	metrics.RecordRenderTick()

	for _, markerID := range s.store.Markers(ctx) {
		vis, ok := s.store.Visibility(ctx, markerID)
		if !ok {
			continue
		}

		snap := Snapshot{
			MarkerID:   markerID,
			History:    s.store.HistorySnapshot(ctx, markerID),
			Trajectory: s.store.TrajectorySnapshot(ctx, markerID),
			Now:        s.now(),
		}
		for _, kind := range model.Kinds() {
			if !vis.Enabled(kind) {
				continue
			}
			s.renderPair(ctx, snap, kind)
		}
	}
}

// renderPair renders one (marker, kind) pair in isolation.
func (s *Scheduler) renderPair(ctx context.Context, snap Snapshot, kind model.ChartKind) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordRenderError(string(kind))
			metrics.RecordErrorByComponent("render", "panic")
			s.logger.Error(ctx, "renderer panicked",
				logger.String("marker", snap.MarkerID),
				logger.String("kind", string(kind)),
				logger.Any("panic", r),
			)
		}
	}()

	renderer, ok := s.renderers[kind]
	if !ok {
		return
	}

	start := time.Now()
	html, err := renderer.Render(snap)
	metrics.RecordRenderDuration(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRenderError(string(kind))
		s.logger.Error(ctx, "render failed",
			logger.String("marker", snap.MarkerID),
			logger.String("kind", string(kind)),
			logger.Error(err),
		)
		return
	}

	s.surfaces.Put(Key{MarkerID: snap.MarkerID, Kind: kind}, html, snap.Now)
	metrics.RecordRender(string(kind))
}

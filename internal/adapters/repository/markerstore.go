package repository

import (
	"context"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/robotat/mocapd/internal/domain/model"
	"github.com/robotat/mocapd/internal/domain/velocity"
)

// Default per-marker caps. History serves the "latest N" table and export
// consumers most-recent-first; trajectory serves plotting and velocity
// estimation oldest-first. The two orders are intentionally inverse.
const (
	defaultHistoryCap    = 200
	defaultTrajectoryCap = 100
)

// record is the accumulated state for one marker.
type record struct {
	history    []model.Sample          // most-recent-first, capped
	trajectory []model.TrajectoryPoint // oldest-first, capped
}

// figureKey identifies one drawing surface's presentation state. A struct
// key rather than string concatenation rules out key-collision bugs.
type figureKey struct {
	MarkerID string
	Kind     model.ChartKind
}

// MarkerStore implements Store with a mutex-guarded map per marker.
type MarkerStore struct {
	mu            sync.RWMutex
	records       map[string]*record
	order         []string // marker ids in first-seen order
	visibility    map[string]model.Visibility
	figures       map[figureKey]bool
	historyCap    int
	trajectoryCap int
}

// NewMarkerStore creates an empty marker store with configuration options.
func NewMarkerStore(opts ...Option) *MarkerStore {
	s := &MarkerStore{
		records:       make(map[string]*record),
		visibility:    make(map[string]model.Visibility),
		figures:       make(map[figureKey]bool),
		historyCap:    defaultHistoryCap,
		trajectoryCap: defaultTrajectoryCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert records an accepted sample for its marker.
func (s *MarkerStore) Upsert(_ context.Context, sample model.Sample) model.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sample.MarkerID]
	if !ok {
		rec = &record{}
		s.records[sample.MarkerID] = rec
		s.order = append(s.order, sample.MarkerID)
		s.visibility[sample.MarkerID] = model.AllVisible()
	}

	// Velocity is estimated against the trajectory before the new point is
	// appended, then carried on both the sample and the trajectory point.
	point := velocity.Point(rec.trajectory, sample)
	sample.Velocity = point.Velocity

	rec.history = append([]model.Sample{sample}, rec.history...)
	if len(rec.history) > s.historyCap {
		rec.history = rec.history[:s.historyCap]
	}

	rec.trajectory = append(rec.trajectory, point)
	if len(rec.trajectory) > s.trajectoryCap {
		rec.trajectory = rec.trajectory[len(rec.trajectory)-s.trajectoryCap:]
	}

	return sample
}

// Markers returns the known marker ids in first-seen order.
func (s *MarkerStore) Markers(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// HistorySnapshot returns a copy of the marker's history, most-recent-first.
func (s *MarkerStore) HistorySnapshot(_ context.Context, markerID string) []model.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[markerID]
	if !ok {
		return nil
	}
	out := make([]model.Sample, len(rec.history))
	copy(out, rec.history)
	return out
}

// TrajectorySnapshot returns a copy of the marker's trajectory, oldest-first.
func (s *MarkerStore) TrajectorySnapshot(_ context.Context, markerID string) []model.TrajectoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[markerID]
	if !ok {
		return nil
	}
	out := make([]model.TrajectoryPoint, len(rec.trajectory))
	copy(out, rec.trajectory)
	return out
}

// AllValidSamples returns every stored sample across all markers.
func (s *MarkerStore) AllValidSamples(_ context.Context) []model.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Sample
	for _, id := range s.order {
		out = append(out, s.records[id].history...)
	}
	return out
}

// Visibility returns the marker's chart toggles.
func (s *MarkerStore) Visibility(_ context.Context, markerID string) (model.Visibility, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.visibility[markerID]
	return v, ok
}

// SetVisibility toggles one chart kind for a marker. Stored data is not
// affected; the render scheduler simply stops or resumes that pair.
func (s *MarkerStore) SetVisibility(_ context.Context, markerID string, kind model.ChartKind, visible bool) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visibility[markerID]
	if !ok {
		return ErrNotFound
	}
	s.visibility[markerID] = v.Set(kind, visible)
	return nil
}

// SetMaximized flags a figure as maximized.
func (s *MarkerStore) SetMaximized(_ context.Context, markerID string, kind model.ChartKind, maximized bool) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[markerID]; !ok {
		return ErrNotFound
	}
	s.figures[figureKey{MarkerID: markerID, Kind: kind}] = maximized
	return nil
}

// Maximized reports the figure flag for a (marker, kind) pair.
func (s *MarkerStore) Maximized(_ context.Context, markerID string, kind model.ChartKind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.figures[figureKey{MarkerID: markerID, Kind: kind}]
}

// Summary returns the digest for one marker.
func (s *MarkerStore) Summary(ctx context.Context, markerID string) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[markerID]
	if !ok {
		return Summary{}, ErrNotFound
	}
	return s.summarize(markerID, rec), nil
}

// Summaries returns digests for all markers in first-seen order.
func (s *MarkerStore) Summaries(_ context.Context) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.summarize(id, s.records[id]))
	}
	return out
}

// summarize builds one marker digest. Must be called with s.mu held.
func (s *MarkerStore) summarize(markerID string, rec *record) Summary {
	sum := Summary{
		MarkerID:   markerID,
		Samples:    len(rec.history),
		Visibility: s.visibility[markerID],
	}
	if len(rec.history) > 0 {
		sum.LastSeen = rec.history[0].ReceivedAt
	}
	if len(rec.trajectory) == 0 {
		return sum
	}

	speeds := make([]float64, len(rec.trajectory))
	for i, p := range rec.trajectory {
		speeds[i] = p.Velocity
		if p.Velocity > sum.MaxVelocity {
			sum.MaxVelocity = p.Velocity
		}
	}
	sum.MeanVelocity = stat.Mean(speeds, nil)
	if len(speeds) > 1 {
		sum.StddevVelocity = stat.StdDev(speeds, nil)
	}
	return sum
}

// Count returns the number of markers tracked.
func (s *MarkerStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Reset clears all marker records, visibility entries, and figure states.
func (s *MarkerStore) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*record)
	s.order = nil
	s.visibility = make(map[string]model.Visibility)
	s.figures = make(map[figureKey]bool)
}

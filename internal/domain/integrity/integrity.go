// Package integrity maintains the process-wide packet accounting for a
// monitoring session: totals, duplicate flagging via the checksum registry,
// and estimated loss from per-marker sequence gaps.
package integrity

import (
	"context"
	"sync"

	"github.com/robotat/mocapd/internal/domain/dedupe"
	"github.com/robotat/mocapd/internal/domain/model"
)

// Stats is a point-in-time copy of the session counters.
//
// Corrupted is part of the published schema but is never incremented:
// geometrically invalid input is dropped at the normalizer before any
// counter changes, so IntegrityPercent is the ratio of valid to normalized
// samples.
type Stats struct {
	Total            int64   `json:"total"`
	Valid            int64   `json:"valid"`
	Corrupted        int64   `json:"corrupted"`
	Duplicates       int64   `json:"duplicates"`
	LostEstimated    int64   `json:"lostEstimated"`
	IntegrityPercent float64 `json:"integrityPercent"`
	DuplicateRate    float64 `json:"duplicateRate"`
	LossRate         float64 `json:"lossRate"`
}

// Result reports how a single sample was classified.
type Result struct {
	Duplicate bool  // checksum seen before
	Lost      int64 // packets estimated lost before this one, from the seq gap
}

// Tracker owns the counters and the checksum registry for one session.
// All mutation happens in Observe and Reset; readers get copies.
type Tracker struct {
	mu       sync.Mutex
	stats    Stats
	lastSeq  map[string]int64 // markerID -> last accepted PacketSeq
	registry dedupe.Registry
}

// NewTracker creates a Tracker backed by the given checksum registry.
func NewTracker(registry dedupe.Registry) *Tracker {
	return &Tracker{
		stats:    Stats{IntegrityPercent: 100},
		lastSeq:  make(map[string]int64),
		registry: registry,
	}
}

// Observe accounts for one normalized sample. Every sample reaching this
// stage is geometrically valid by construction. Duplicates are flagged, never
// dropped. Loss is estimated from gaps in the emitter-reported sequence,
// per marker; a sequence that moves backwards resynchronizes without
// counting a gap, since emitters restart their counters.
func (t *Tracker) Observe(ctx context.Context, s model.Sample) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Total++
	t.stats.Valid++

	res := Result{}
	if t.registry.SeenAndRecord(ctx, s.Checksum) {
		t.stats.Duplicates++
		res.Duplicate = true
	}

	if prev, ok := t.lastSeq[s.MarkerID]; ok && s.PacketSeq > prev+1 {
		res.Lost = s.PacketSeq - prev - 1
		t.stats.LostEstimated += res.Lost
	}
	t.lastSeq[s.MarkerID] = s.PacketSeq

	t.recompute()
	return res
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// RegistrySize returns the number of checksums currently recorded.
func (t *Tracker) RegistrySize() int64 {
	return t.registry.Size()
}

// Reset clears every counter and the checksum registry as one step. Readers
// observe the state either fully before or fully after.
func (t *Tracker) Reset(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats = Stats{IntegrityPercent: 100}
	t.lastSeq = make(map[string]int64)
	t.registry.Reset(ctx)
}

// recompute refreshes the derived percentages. Must be called with t.mu held.
func (t *Tracker) recompute() {
	if t.stats.Total == 0 {
		t.stats.IntegrityPercent = 100
		t.stats.DuplicateRate = 0
	} else {
		t.stats.IntegrityPercent = float64(t.stats.Valid) / float64(t.stats.Total) * 100
		t.stats.DuplicateRate = float64(t.stats.Duplicates) / float64(t.stats.Total) * 100
	}
	if expected := t.stats.Total + t.stats.LostEstimated; expected > 0 {
		t.stats.LossRate = float64(t.stats.LostEstimated) / float64(expected) * 100
	} else {
		t.stats.LossRate = 0
	}
}

package ingest

import (
	"sync"
	"time"
)

// Gate rate-limits inbound broker messages by enforcing a minimum spacing
// between accepted messages. Messages arriving inside the spacing window are
// dropped, not buffered.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// GateOption applies a configuration option to the Gate.
type GateOption func(*Gate)

// WithGateClock overrides the gate's time source.
func WithGateClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate creates a gate with the given minimum spacing between accepted
// messages. A non-positive interval disables throttling.
func NewGate(interval time.Duration, opts ...GateOption) *Gate {
	g := &Gate{
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow reports whether a message arriving now should be accepted, and if so
// advances the window.
func (g *Gate) Allow() bool {
	if g.interval <= 0 {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Reset clears the window so the next message is accepted regardless of when
// the previous one arrived.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = time.Time{}
}

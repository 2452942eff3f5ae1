package render

import (
	"sync"
	"time"

	"github.com/robotat/mocapd/internal/domain/model"
)

// Key identifies one rendered surface.
type Key struct {
	MarkerID string
	Kind     model.ChartKind
}

// Surface is one rendered chart document.
type Surface struct {
	Key        Key
	HTML       []byte
	RenderedAt time.Time
}

// SurfaceTable holds the latest rendered document per (marker, kind) pair.
type SurfaceTable struct {
	mu       sync.RWMutex
	surfaces map[Key]Surface
}

// NewSurfaceTable creates an empty surface table.
func NewSurfaceTable() *SurfaceTable {
	return &SurfaceTable{
		surfaces: make(map[Key]Surface),
	}
}

// Put swaps in the latest document for a key.
func (t *SurfaceTable) Put(key Key, html []byte, renderedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.surfaces[key] = Surface{Key: key, HTML: html, RenderedAt: renderedAt}
}

// Get returns the latest surface for a key. The second return is false when
// nothing has been rendered for the pair yet.
func (t *SurfaceTable) Get(key Key) (Surface, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.surfaces[key]
	return s, ok
}

// Delete drops the surface for a key, if present.
func (t *SurfaceTable) Delete(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.surfaces, key)
}

// Len returns the number of stored surfaces.
func (t *SurfaceTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.surfaces)
}

// Reset drops all surfaces.
func (t *SurfaceTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.surfaces = make(map[Key]Surface)
}

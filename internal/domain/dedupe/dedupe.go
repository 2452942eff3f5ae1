// Package dedupe tracks checksum tokens for duplicate detection.
//
// Duplication is observational: a repeated checksum flags the sample as a
// duplicate but never drops it. The registry is unbounded for the life of a
// session by default, which is a known long-session memory-growth
// characteristic; an optional bounded mode with LIFO eviction is available
// for long-running deployments.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Registry records seen checksums and flags repeats.
type Registry interface {
	// SeenAndRecord atomically checks whether cks was seen before and records
	// it unconditionally. Returns true if cks was already present.
	SeenAndRecord(ctx context.Context, cks string) bool

	// Reset empties the registry.
	Reset(ctx context.Context)

	Size() int64
}

// node is a single entry in the bounded-mode eviction list.
type node struct {
	cks  string
	next *node
}

func (n *node) reset() {
	n.cks = ""
	n.next = nil
}

// checksumRegistry implements Registry in memory.
// Bounded mode (maxSize > 0) keeps a linked list for LIFO eviction and a
// sync.Pool for node reuse; unbounded mode (maxSize <= 0) is a plain map.
type checksumRegistry struct {
	mu       sync.Mutex
	seen     map[string]*node // cks -> node in bounded mode, nil values otherwise
	head     *node            // most recently recorded checksum
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewRegistry creates an in-memory checksum registry with configuration
// options. The default is unbounded, matching session-scoped monitoring use.
func NewRegistry(opts ...Option) Registry {
	r := &checksumRegistry{}
	for _, opt := range opts {
		opt(r)
	}
	r.seen = make(map[string]*node)
	if r.maxSize > 0 {
		r.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}
	return r
}

// SeenAndRecord atomically checks whether cks was seen before and records it.
func (r *checksumRegistry) SeenAndRecord(_ context.Context, cks string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seen[cks]; exists {
		return true
	}

	if r.maxSize > 0 {
		if len(r.seen) >= r.maxSize {
			r.evict()
		}
		n := r.nodePool.Get().(*node)
		n.cks = cks
		n.next = r.head
		r.head = n
		r.seen[cks] = n
	} else {
		r.seen[cks] = nil
	}
	r.size.Add(1)
	return false
}

// Reset empties the registry. Called together with the integrity counter
// reset so both clear as one operator-visible step.
func (r *checksumRegistry) Reset(_ context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen = make(map[string]*node)
	r.head = nil
	r.size.Store(0)
}

// evict removes the oldest recorded checksum. Must be called with r.mu held.
func (r *checksumRegistry) evict() {
	if len(r.seen) == 0 || r.head == nil {
		return
	}

	current := r.head
	if current.next == nil {
		delete(r.seen, current.cks)
		current.reset()
		r.nodePool.Put(current)
		r.head = nil
		r.size.Add(-1)
		return
	}

	var prev *node
	for current.next != nil {
		prev = current
		current = current.next
	}
	prev.next = nil
	delete(r.seen, current.cks)
	current.reset()
	r.nodePool.Put(current)
	r.size.Add(-1)
}

// Size returns the current number of recorded checksums.
func (r *checksumRegistry) Size() int64 {
	return r.size.Load()
}

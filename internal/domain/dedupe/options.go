// Package dedupe tracks checksum tokens for duplicate detection.
package dedupe

// Option applies a configuration option to the checksum registry.
type Option func(*checksumRegistry)

// WithMaxSize caps the number of checksums kept in memory.
// maxSize > 0 enables bounded mode with LIFO eviction; maxSize <= 0 keeps the
// registry unbounded for the session lifetime.
func WithMaxSize(maxSize int) Option {
	return func(r *checksumRegistry) {
		r.maxSize = maxSize
	}
}

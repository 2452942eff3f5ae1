package repository

// Option applies a configuration option to the MarkerStore.
type Option func(*MarkerStore)

// WithHistoryCap bounds the per-marker history length.
func WithHistoryCap(n int) Option {
	return func(s *MarkerStore) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// WithTrajectoryCap bounds the per-marker trajectory length.
func WithTrajectoryCap(n int) Option {
	return func(s *MarkerStore) {
		if n > 0 {
			s.trajectoryCap = n
		}
	}
}

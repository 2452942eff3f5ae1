package render

import (
	"time"

	"github.com/robotat/mocapd/pkg/logger"
)

// SchedulerOption applies a configuration option to the Scheduler.
type SchedulerOption func(*Scheduler)

// WithPeriod sets the render period.
func WithPeriod(period time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if period > 0 {
			s.period = period
		}
	}
}

// WithRenderer replaces the renderer for its kind.
func WithRenderer(r Renderer) SchedulerOption {
	return func(s *Scheduler) {
		if r != nil {
			s.renderers[r.Kind()] = r
		}
	}
}

// WithClock overrides the scheduler's time source. Used in tests.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for the scheduler.
func WithLogger(log logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if log != nil {
			s.logger = log
		}
	}
}

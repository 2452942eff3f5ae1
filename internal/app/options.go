package service

import (
	"time"

	"github.com/robotat/mocapd/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBrokerURL sets the MQTT broker address.
func WithBrokerURL(url string) Option {
	return func(s *Service) {
		s.brokerURL = url
	}
}

// WithTopic sets the subscription topic filter.
func WithTopic(topic string) Option {
	return func(s *Service) {
		s.topic = topic
	}
}

// WithClientID sets the MQTT client identifier.
func WithClientID(id string) Option {
	return func(s *Service) {
		s.clientID = id
	}
}

// WithQueueSize sets the capacity of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithThrottleInterval sets the minimum spacing between accepted packets.
func WithThrottleInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.throttleInterval = interval
	}
}

// WithRenderPeriod sets the render scheduler period.
func WithRenderPeriod(period time.Duration) Option {
	return func(s *Service) {
		if period > 0 {
			s.renderPeriod = period
		}
	}
}

// WithHistoryCap sets the per-marker history cap.
func WithHistoryCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// WithTrajectoryCap sets the per-marker trajectory cap.
func WithTrajectoryCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trajectoryCap = n
		}
	}
}

// WithDedupeMaxSize bounds the checksum registry. Zero keeps it unbounded.
func WithDedupeMaxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeMaxSize = n
		}
	}
}

// WithAutoConnect controls whether Start dials the broker immediately.
func WithAutoConnect(auto bool) Option {
	return func(s *Service) {
		s.autoConnect = auto
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

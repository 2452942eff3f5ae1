package ingest

import (
	"time"

	"github.com/robotat/mocapd/pkg/logger"
)

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithBrokerURL sets the broker address, e.g. "tcp://127.0.0.1:1883".
func WithBrokerURL(url string) Option {
	return func(s *Source) {
		if url != "" {
			s.brokerURL = url
		}
	}
}

// WithTopic sets the subscription topic filter.
func WithTopic(topic string) Option {
	return func(s *Source) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithClientID sets the MQTT client identifier.
func WithClientID(id string) Option {
	return func(s *Source) {
		if id != "" {
			s.clientID = id
		}
	}
}

// WithQoS sets the subscription quality of service level.
func WithQoS(qos byte) Option {
	return func(s *Source) {
		if qos <= 2 {
			s.qos = qos
		}
	}
}

// WithThrottleInterval sets the minimum spacing between accepted messages.
// A non-positive interval disables throttling.
func WithThrottleInterval(interval time.Duration) Option {
	return func(s *Source) {
		s.gate = NewGate(interval)
	}
}

// WithGate replaces the throttle gate, mainly for tests that need a
// deterministic clock.
func WithGate(gate *Gate) Option {
	return func(s *Source) {
		if gate != nil {
			s.gate = gate
		}
	}
}

// WithConnectTimeout sets the initial connect and subscribe timeout.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(s *Source) {
		if timeout > 0 {
			s.connectTimeout = timeout
		}
	}
}

// WithReconnectMaxWait caps the auto-reconnect backoff.
func WithReconnectMaxWait(wait time.Duration) Option {
	return func(s *Source) {
		if wait > 0 {
			s.reconnectMaxWait = wait
		}
	}
}

// WithLogger sets the logger for the source.
func WithLogger(log logger.Logger) Option {
	return func(s *Source) {
		if log != nil {
			s.log = log
		}
	}
}

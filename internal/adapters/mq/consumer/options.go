package consumer

import "github.com/robotat/mocapd/pkg/logger"

// Option applies a configuration option to the Consumer.
type Option func(*Consumer)

// WithLogger sets the logger for the consumer.
func WithLogger(log logger.Logger) Option {
	return func(c *Consumer) {
		if log != nil {
			c.logger = log
		}
	}
}

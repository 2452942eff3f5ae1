// Package consumer drains the ingestion queue and applies packets to the
// tracked marker state.
package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/robotat/mocapd/internal/adapters/mq/queue"
	"github.com/robotat/mocapd/internal/domain/integrity"
	"github.com/robotat/mocapd/internal/domain/model"
	"github.com/robotat/mocapd/internal/domain/telemetry"
	"github.com/robotat/mocapd/pkg/logger"
	"github.com/robotat/mocapd/pkg/metrics"
)

// Normalizer turns a raw broker message into a telemetry sample.
type Normalizer interface {
	Normalize(topic string, payload []byte) (model.Sample, error)
}

// Tracker records integrity outcomes for accepted samples.
type Tracker interface {
	Observe(ctx context.Context, s model.Sample) integrity.Result
	RegistrySize() int64
}

// Store persists accepted samples per marker.
type Store interface {
	Upsert(ctx context.Context, s model.Sample) model.Sample
	Count(ctx context.Context) int
}

// Queue defines how the consumer receives raw messages.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Message
}

// Consumer is the single goroutine that owns all state mutation in the
// pipeline. Running exactly one keeps per-marker samples applied in arrival
// order, so history and trajectory never interleave out of sequence.
type Consumer struct {
	queue      Queue
	normalizer Normalizer
	tracker    Tracker
	store      Store

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a consumer with configuration options.
func New(q Queue, n Normalizer, t Tracker, s Store, opts ...Option) *Consumer {
	c := &Consumer{
		queue:      q,
		normalizer: n,
		tracker:    t,
		store:      s,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Named("consumer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run drains the queue until ctx is canceled, Shutdown is called, or the
// queue closes.
func (c *Consumer) Run(ctx context.Context) {
	defer close(c.done)

	messages := c.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		case m, ok := <-messages:
			if !ok {
				return
			}
			c.process(ctx, m)
		}
	}
}

// Shutdown stops the consumer and waits for the in-flight message to finish.
func (c *Consumer) Shutdown(ctx context.Context) error {
	close(c.shutdown)

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		c.logger.Warn(ctx, "shutdown timed out")
		return ctx.Err()
	}
}

// process applies a single raw message. Errors never stop the loop; a broken
// packet is counted and dropped while the stream keeps flowing.
func (c *Consumer) process(ctx context.Context, m queue.Message) {
	start := time.Now()
	defer func() {
		metrics.RecordProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	sample, err := c.normalizer.Normalize(m.Topic, m.Payload)
	if err != nil {
		metrics.RecordPacketDiscarded(discardReason(err))
		if !errors.Is(err, telemetry.ErrNotTelemetry) {
			c.logger.Debug(ctx, "packet discarded",
				logger.String("topic", m.Topic),
				logger.Error(err),
			)
		}
		return
	}
	if !m.ReceivedAt.IsZero() {
		// Prefer the broker-arrival timestamp captured at enqueue time.
		sample.ReceivedAt = m.ReceivedAt.UnixMilli()
	}

	res := c.tracker.Observe(ctx, sample)
	if res.Lost > 0 {
		metrics.AddPacketsLostEstimated(res.Lost)
	}
	if res.Duplicate {
		// Duplicates are flagged, never dropped: the sample still lands in
		// history and trajectory.
		metrics.RecordSampleDuplicate()
	}

	stored := c.store.Upsert(ctx, sample)
	metrics.RecordSampleAccepted()
	metrics.UpdateMarkerCount(c.store.Count(ctx))
	metrics.UpdateRegistrySize(c.tracker.RegistrySize())

	c.logger.Debug(ctx, "sample accepted",
		logger.String("marker", stored.MarkerID),
		logger.Int64("seq", stored.PacketSeq),
		logger.Float64("velocity", stored.Velocity),
	)
}

// discardReason maps a normalization error onto a metric label.
func discardReason(err error) string {
	switch {
	case errors.Is(err, telemetry.ErrNotTelemetry):
		return "not_telemetry"
	case errors.Is(err, telemetry.ErrBadGeometry):
		return "bad_geometry"
	case errors.Is(err, telemetry.ErrBadEnvelope):
		return "bad_envelope"
	default:
		return "unknown"
	}
}

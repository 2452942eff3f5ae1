// Package service assembles the telemetry pipeline and implements the
// control surface required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/robotat/mocapd/internal/adapters/export"
	"github.com/robotat/mocapd/internal/adapters/mq/consumer"
	"github.com/robotat/mocapd/internal/adapters/mq/ingest"
	"github.com/robotat/mocapd/internal/adapters/mq/queue"
	"github.com/robotat/mocapd/internal/adapters/render"
	"github.com/robotat/mocapd/internal/adapters/repository"
	"github.com/robotat/mocapd/internal/domain/dedupe"
	"github.com/robotat/mocapd/internal/domain/integrity"
	"github.com/robotat/mocapd/internal/domain/telemetry"
	"github.com/robotat/mocapd/pkg/logger"
	"github.com/robotat/mocapd/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize        = 4096
	defaultThrottleInterval = 250 * time.Millisecond
	defaultRenderPeriod     = 200 * time.Millisecond
	shutdownTimeout         = 5 * time.Second
)

// Service owns the full pipeline: broker source, queue, consumer, marker
// store, render scheduler, and exporter.
type Service struct {
	mu sync.Mutex

	// Core components
	registry  dedupe.Registry
	tracker   *integrity.Tracker
	store     *repository.MarkerStore
	queue     *queue.InMemoryQueue
	source    *ingest.Source
	consumer  *consumer.Consumer
	surfaces  *render.SurfaceTable
	scheduler *render.Scheduler
	exporter  *export.Exporter

	// Configuration
	brokerURL        string
	topic            string
	clientID         string
	queueSize        int
	throttleInterval time.Duration
	renderPeriod     time.Duration
	historyCap       int
	trajectoryCap    int
	dedupeMaxSize    int

	// State
	started     bool
	cancelRun   context.CancelFunc
	autoConnect bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:        defaultQueueSize,
		throttleInterval: defaultThrottleInterval,
		renderPeriod:     defaultRenderPeriod,
		autoConnect:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds every component and launches the consumer and render loops.
// The broker connection is attempted but a down broker is not fatal; the
// operator can retry via StartIngest once the broker is reachable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.logger.Info(ctx, "starting telemetry service")

	registryOpts := []dedupe.Option{}
	if s.dedupeMaxSize > 0 {
		registryOpts = append(registryOpts, dedupe.WithMaxSize(s.dedupeMaxSize))
	}
	s.registry = dedupe.NewRegistry(registryOpts...)
	s.tracker = integrity.NewTracker(s.registry)

	storeOpts := []repository.Option{}
	if s.historyCap > 0 {
		storeOpts = append(storeOpts, repository.WithHistoryCap(s.historyCap))
	}
	if s.trajectoryCap > 0 {
		storeOpts = append(storeOpts, repository.WithTrajectoryCap(s.trajectoryCap))
	}
	s.store = repository.NewMarkerStore(storeOpts...)

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.surfaces = render.NewSurfaceTable()
	s.exporter = export.New(s.store)

	sourceOpts := []ingest.Option{
		ingest.WithThrottleInterval(s.throttleInterval),
	}
	if s.brokerURL != "" {
		sourceOpts = append(sourceOpts, ingest.WithBrokerURL(s.brokerURL))
	}
	if s.topic != "" {
		sourceOpts = append(sourceOpts, ingest.WithTopic(s.topic))
	}
	if s.clientID != "" {
		sourceOpts = append(sourceOpts, ingest.WithClientID(s.clientID))
	}
	s.source = ingest.NewSource(s.queue, sourceOpts...)

	s.consumer = consumer.New(s.queue, telemetry.New(), s.tracker, s.store)
	s.scheduler = render.NewScheduler(s.store, s.surfaces, render.WithPeriod(s.renderPeriod))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	go s.consumer.Run(runCtx)
	go s.scheduler.Run(runCtx)

	if s.autoConnect {
		if err := s.source.Start(ctx); err != nil {
			s.logger.Warn(ctx, "broker not reachable at startup, ingestion idle",
				logger.Error(err),
			)
		}
	}

	s.started = true
	s.logger.Info(ctx, "telemetry service started",
		logger.String("broker", s.brokerURL),
		logger.String("topic", s.topic),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping telemetry service")

	_ = s.source.Stop(ctx)
	_ = s.queue.Close()
	_ = s.consumer.Shutdown(ctx)
	_ = s.scheduler.Shutdown(ctx)
	if s.cancelRun != nil {
		s.cancelRun()
	}

	s.started = false
	s.logger.Info(ctx, "telemetry service stopped")
}

// StartIngest resumes broker consumption. Accumulated state is untouched.
func (s *Service) StartIngest(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source.IsRunning() {
		return nil
	}
	return s.source.Start(ctx)
}

// StopIngest pauses broker consumption. Accumulated state is untouched.
func (s *Service) StopIngest(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source.Stop(ctx)
}

// Reset atomically clears integrity stats, the checksum registry, all marker
// records, and every rendered surface. Ingestion keeps running; packets
// arriving after the reset build fresh state.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Reset(ctx)
	s.store.Reset(ctx)
	s.surfaces.Reset()
	metrics.UpdateMarkerCount(0)
	metrics.UpdateRegistrySize(0)

	s.logger.Info(ctx, "pipeline state reset")
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats["integrity"] = s.tracker.Snapshot()
	stats["markers"] = s.store.Count(ctx)
	stats["registrySize"] = s.tracker.RegistrySize()
	stats["queueLength"] = s.queue.Len(ctx)
	stats["ingesting"] = s.source.IsRunning()
	stats["brokerConnected"] = s.source.IsConnected()
	stats["surfaces"] = s.surfaces.Len()
	return stats
}

// Store exposes the marker store for HTTP wiring.
func (s *Service) Store() *repository.MarkerStore {
	return s.store
}

// Surfaces exposes the surface table for HTTP wiring.
func (s *Service) Surfaces() *render.SurfaceTable {
	return s.surfaces
}

// Exporter exposes the exporter for HTTP wiring.
func (s *Service) Exporter() *export.Exporter {
	return s.exporter
}

// Package ingest connects to the MQTT broker, throttles the raw packet
// stream, and feeds accepted messages into the pipeline queue.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/robotat/mocapd/internal/adapters/mq/queue"
	"github.com/robotat/mocapd/pkg/logger"
	"github.com/robotat/mocapd/pkg/metrics"
)

// Default source configuration constants.
const (
	defaultBrokerURL        = "tcp://127.0.0.1:1883"
	defaultTopic            = "mocap/#"
	defaultQoS              = byte(0)
	defaultThrottleInterval = 250 * time.Millisecond
	defaultConnectTimeout   = 5 * time.Second
	defaultReconnectMaxWait = 30 * time.Second
	defaultKeepAlive        = 30 * time.Second

	disconnectQuiesceMillis = 250
)

// Source subscribes to the motion-capture topic and enqueues raw messages.
// The paho client auto-reconnects with capped backoff; Stop disconnects
// without touching any downstream state, so a later Start resumes against
// whatever the pipeline has already accumulated.
type Source struct {
	log  logger.Logger
	q    queue.Queue
	gate *Gate

	brokerURL        string
	topic            string
	clientID         string
	qos              byte
	connectTimeout   time.Duration
	reconnectMaxWait time.Duration

	mu       sync.Mutex
	client   paho.Client
	running  bool
	connects int
}

// NewSource creates a broker source feeding the given queue.
func NewSource(q queue.Queue, opts ...Option) *Source {
	s := &Source{
		log:              logger.Named("ingest"),
		q:                q,
		brokerURL:        defaultBrokerURL,
		topic:            defaultTopic,
		clientID:         fmt.Sprintf("mocapd-%s", uuid.NewString()[:8]),
		qos:              defaultQoS,
		connectTimeout:   defaultConnectTimeout,
		reconnectMaxWait: defaultReconnectMaxWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gate == nil {
		s.gate = NewGate(defaultThrottleInterval)
	}
	return s
}

// Start connects to the broker and subscribes to the configured topic.
// It is an error to start an already running source.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	cfg := paho.NewClientOptions()
	cfg.AddBroker(s.brokerURL)
	cfg.SetClientID(s.clientID)
	cfg.SetCleanSession(true)
	cfg.SetKeepAlive(defaultKeepAlive)
	cfg.SetAutoReconnect(true)
	cfg.SetMaxReconnectInterval(s.reconnectMaxWait)
	cfg.SetConnectTimeout(s.connectTimeout)
	cfg.SetOnConnectHandler(s.onConnect)
	cfg.SetConnectionLostHandler(s.onConnectionLost)

	s.client = paho.NewClient(cfg)
	token := s.client.Connect()
	if !token.WaitTimeout(s.connectTimeout) {
		s.client = nil
		return fmt.Errorf("%w: broker %s", ErrConnectTimeout, s.brokerURL)
	}
	if err := token.Error(); err != nil {
		s.client = nil
		return fmt.Errorf("connecting to broker %s: %w", s.brokerURL, err)
	}

	s.running = true
	s.log.Info(ctx, "source started",
		logger.String("broker", s.brokerURL),
		logger.String("topic", s.topic),
		logger.String("client_id", s.clientID),
	)
	return nil
}

// Stop disconnects from the broker. Downstream state is left intact.
func (s *Source) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(disconnectQuiesceMillis)
	}
	s.client = nil
	s.running = false
	s.connects = 0
	metrics.UpdateBrokerConnected(false)

	s.log.Info(ctx, "source stopped")
	return nil
}

// IsRunning returns true if the source has been started and not stopped.
func (s *Source) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// IsConnected returns true if the broker session is currently up.
func (s *Source) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil && s.client.IsConnected()
}

// onConnect fires on every (re)connect. Subscriptions are not retained across
// a clean session, so the topic is subscribed again here.
func (s *Source) onConnect(client paho.Client) {
	ctx := context.Background()

	token := client.Subscribe(s.topic, s.qos, s.handleMessage)
	if !token.WaitTimeout(s.connectTimeout) || token.Error() != nil {
		metrics.RecordErrorByComponent("ingest", "subscribe_failed")
		s.log.Error(ctx, "subscribe failed",
			logger.String("topic", s.topic),
			logger.Error(token.Error()),
		)
		return
	}

	s.mu.Lock()
	s.connects++
	reconnect := s.connects > 1
	s.mu.Unlock()

	metrics.UpdateBrokerConnected(true)
	if reconnect {
		metrics.RecordBrokerReconnect()
		s.log.Info(ctx, "broker reconnected", logger.String("topic", s.topic))
	} else {
		s.log.Info(ctx, "broker connected", logger.String("topic", s.topic))
	}
}

func (s *Source) onConnectionLost(_ paho.Client, err error) {
	metrics.UpdateBrokerConnected(false)
	metrics.RecordErrorByComponent("ingest", "connection_lost")
	s.log.Warn(context.Background(), "broker connection lost", logger.Error(err))
}

// handleMessage runs on the paho callback goroutine. It must return quickly,
// so it only gates and enqueues; parsing happens in the consumer.
func (s *Source) handleMessage(_ paho.Client, msg paho.Message) {
	metrics.RecordPacketReceived()

	if !s.gate.Allow() {
		metrics.RecordThrottleDrop()
		return
	}

	// paho may reuse the payload buffer after the callback returns.
	payload := make([]byte, len(msg.Payload()))
	copy(payload, msg.Payload())

	s.q.Enqueue(context.Background(), queue.Message{
		Topic:      msg.Topic(),
		Payload:    payload,
		ReceivedAt: time.Now(),
	})
}

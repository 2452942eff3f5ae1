package testpackets

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/robotat/mocapd/pkg/logger"
)

// Run connects to the broker and publishes synthetic pose packets until the
// configured count is reached or the context is cancelled.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting packet publisher",
		logger.String("broker", config.BrokerURL),
		logger.String("topic", config.Topic),
		logger.Int("sources", config.Sources),
		logger.Int("rate", config.Rate),
		logger.Int("count", config.Count),
		logger.Float64("duplicateFrac", config.DuplicateFrac),
		logger.Float64("corruptFrac", config.CorruptFrac),
		logger.Any("wrap", config.Wrap))

	client, err := connect(config)
	if err != nil {
		return fmt.Errorf("broker connect failed: %w", err)
	}
	defer client.Disconnect(disconnectQuiesceMillis)

	if err := publishLoop(ctx, config, client, stats); err != nil {
		return err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "publisher finished")
	return nil
}

const disconnectQuiesceMillis = 250

// connect dials the broker with a short-lived synthetic client identity.
func connect(config *Config) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(config.BrokerURL).
		SetClientID("mocap-pub-" + uuid.NewString()[:8]).
		SetCleanSession(true).
		SetConnectTimeout(config.Timeout)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(config.Timeout) {
		return nil, fmt.Errorf("connect to %s timed out after %s", config.BrokerURL, config.Timeout)
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	return client, nil
}

// publishLoop emits packets round-robin across sources at the configured
// rate, occasionally replaying or mangling a packet to exercise the
// monitor's duplicate and discard handling.
func publishLoop(ctx context.Context, config *Config, client paho.Client, stats *Stats) error {
	gen := newGenerator(config.Sources)
	interval := time.Second / time.Duration(config.Rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastPayload []byte
	source := 0

	for i := 0; config.Count == 0 || i < config.Count; i++ {
		select {
		case <-ctx.Done():
			logger.Get().Info(ctx, "publisher cancelled",
				logger.Int("published", stats.PacketsPublished))
			return nil
		case now := <-ticker.C:
			payload, kind, err := nextPayload(gen, config, source, now, lastPayload)
			if err != nil {
				return fmt.Errorf("encode packet: %w", err)
			}

			token := client.Publish(config.Topic, config.QoS, false, payload)
			if !token.WaitTimeout(config.Timeout) || token.Error() != nil {
				stats.PublishFailures++
				logger.Get().Warn(ctx, "publish failed", logger.Error(token.Error()))
				continue
			}

			stats.PacketsPublished++
			switch kind {
			case payloadDuplicate:
				stats.DuplicatesSent++
			case payloadCorrupt:
				stats.CorruptedSent++
			default:
				lastPayload = payload
			}

			if config.Verbose {
				logger.Get().Debug(ctx, "published",
					logger.Int("n", stats.PacketsPublished),
					logger.String("kind", string(kind)))
			}

			source = (source + 1) % config.Sources
		}
	}
	return nil
}

type payloadKind string

const (
	payloadNormal    payloadKind = "normal"
	payloadDuplicate payloadKind = "duplicate"
	payloadCorrupt   payloadKind = "corrupt"
)

// nextPayload picks between a fresh packet, a verbatim replay of the previous
// one, and a mangled encoding, weighted by the configured fractions.
func nextPayload(gen *generator, config *Config, source int, now time.Time, last []byte) ([]byte, payloadKind, error) {
	roll := getRandomFloat()
	if roll < config.DuplicateFrac && last != nil {
		return last, payloadDuplicate, nil
	}

	raw, err := encode(gen.next(source, now), config.Wrap)
	if err != nil {
		return nil, payloadNormal, err
	}
	if roll < config.DuplicateFrac+config.CorruptFrac {
		return corrupt(raw), payloadCorrupt, nil
	}
	return raw, payloadNormal, nil
}

// displayFinalStats prints the final publisher statistics.
func displayFinalStats(stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.PacketsPublished) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("packetsPublished", stats.PacketsPublished),
		logger.Int("duplicatesSent", stats.DuplicatesSent),
		logger.Int("corruptedSent", stats.CorruptedSent),
		logger.Int("publishFailures", stats.PublishFailures),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("packetsPerSecond", perSecond))
}

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers file and environment sources over the defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BrokerURL is the MQTT broker address.
	BrokerURL string `koanf:"broker_url"`

	// Topic is the MQTT subscription filter for telemetry packets.
	Topic string `koanf:"topic"`

	// ClientID identifies this process to the broker. Empty means a
	// generated id.
	ClientID string `koanf:"client_id"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// ThrottleIntervalMS is the minimum spacing between accepted packets in
	// milliseconds. Zero disables throttling.
	ThrottleIntervalMS int `koanf:"throttle_interval_ms"`

	// RenderPeriodMS is the render scheduler period in milliseconds.
	RenderPeriodMS int `koanf:"render_period_ms"`

	// HistoryCap bounds per-marker sample history.
	HistoryCap int `koanf:"history_cap"`

	// TrajectoryCap bounds per-marker trajectory points.
	TrajectoryCap int `koanf:"trajectory_cap"`

	// DedupeMaxSize bounds the checksum registry. Zero keeps it unbounded.
	DedupeMaxSize int `koanf:"dedupe_max_size"`
}

// New creates a Config with defaults matching the lab setup.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		BrokerURL:          "tcp://127.0.0.1:1883",
		Topic:              "mocap/#",
		QueueSize:          4096,
		ThrottleIntervalMS: 250,
		RenderPeriodMS:     200,
		HistoryCap:         200,
		TrajectoryCap:      100,
		DedupeMaxSize:      0,
	}
}

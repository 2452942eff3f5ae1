package testpackets

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/robotat/mocapd/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "publish_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the packet publisher tool.
func ShowHelp() {
	os.Stdout.WriteString(`Mocapd Packet Publisher
=======================

Publishes synthetic motion-capture pose packets to an MQTT broker so the
monitor can be exercised without the lab rig.

Usage:
  go run cmd/test-packets/main.go [options]

Options:
  -broker string
        MQTT broker URL (default "tcp://127.0.0.1:1883")
  -topic string
        Topic to publish on (default "mocap/all")
  -sources int
        Number of distinct marker sources (default 3)
  -rate int
        Packets per second across all sources (default 20)
  -count int
        Total packets to publish, 0 runs until interrupted (default 0)
  -duplicates float
        Fraction of packets replayed verbatim (default 0.02)
  -corrupt float
        Fraction of packets mangled before publish (default 0.02)
  -qos int
        MQTT QoS for publishes (default 0)
  -timeout duration
        Broker connect timeout (default 5s)
  -wrap
        Wrap packets in the websocket relay envelope
  -log string
        Log file for publisher output (default: publish_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Publish three circling markers forever at 20 pps
  go run cmd/test-packets/main.go

  # A short burst with heavy duplicate and corruption injection
  go run cmd/test-packets/main.go -count 500 -duplicates 0.1 -corrupt 0.1

  # Exercise the relay envelope path against a remote broker
  go run cmd/test-packets/main.go -broker tcp://lab-broker:1883 -wrap
`)
}

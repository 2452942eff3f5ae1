package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robotat/mocapd/internal/testpackets"
)

// Default configuration constants.
const (
	defaultSources        = 3
	defaultRate           = 20
	defaultDuplicateFrac  = 0.02
	defaultCorruptFrac    = 0.02
	defaultConnectTimeout = 5 * time.Second
)

func main() {
	var (
		brokerURL  = flag.String("broker", "tcp://127.0.0.1:1883", "MQTT broker URL")
		topic      = flag.String("topic", "mocap/all", "Topic to publish on")
		sources    = flag.Int("sources", defaultSources, "Number of distinct marker sources")
		rate       = flag.Int("rate", defaultRate, "Packets per second across all sources")
		count      = flag.Int("count", 0, "Total packets to publish, 0 runs until interrupted")
		duplicates = flag.Float64("duplicates", defaultDuplicateFrac, "Fraction of packets replayed verbatim")
		corruptPct = flag.Float64("corrupt", defaultCorruptFrac, "Fraction of packets mangled before publish")
		qos        = flag.Int("qos", 0, "MQTT QoS for publishes")
		timeout    = flag.Duration("timeout", defaultConnectTimeout, "Broker connect timeout")
		wrap       = flag.Bool("wrap", false, "Wrap packets in the websocket relay envelope")
		logFile    = flag.String("log", "", "Log file for publisher output (default: publish_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testpackets.ShowHelp()
		return
	}

	if *sources < 1 || *rate < 1 || *qos < 0 || *qos > 2 {
		os.Stderr.WriteString("invalid flags: sources and rate must be positive, qos must be 0..2\n")
		return
	}

	// Setup logging
	if err := testpackets.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Publish until interrupted or the count is reached
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config := &testpackets.Config{
		BrokerURL:     *brokerURL,
		Topic:         *topic,
		Sources:       *sources,
		Rate:          *rate,
		Count:         *count,
		DuplicateFrac: *duplicates,
		CorruptFrac:   *corruptPct,
		QoS:           byte(*qos),
		Timeout:       *timeout,
		Wrap:          *wrap,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	if err := testpackets.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Publisher failed: " + err.Error() + "\n")
		return
	}
}

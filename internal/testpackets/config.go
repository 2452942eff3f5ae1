package testpackets

import "time"

// Config holds configuration for the packet publisher run
type Config struct {
	BrokerURL     string        // MQTT broker to publish to
	Topic         string        // Topic packets are published on
	Sources       int           // Number of distinct marker sources
	Rate          int           // Packets per second across all sources
	Count         int           // Total packets to publish, 0 means until cancelled
	DuplicateFrac float64       // Fraction of packets republished verbatim
	CorruptFrac   float64       // Fraction of packets mangled before publish
	QoS           byte          // MQTT QoS for publishes
	Timeout       time.Duration // Broker connect timeout
	Wrap          bool          // Wrap packets in the websocket relay envelope
	LogFile       string        // Log file for publisher output
	Verbose       bool          // Enable verbose logging
}

// Pose carries a position and rotation pair in the lab coordinate frame.
type Pose struct {
	Position Vector3    `json:"position"`
	Rotation Quaternion `json:"rotation"`
}

// Vector3 is a cartesian position in meters.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a unit rotation.
type Quaternion struct {
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
	QW float64 `json:"qw"`
}

// Payload is the pld section of a packet.
type Payload struct {
	Pose Pose `json:"pose"`
}

// body is the checksummed portion of a packet. The checksum is computed over
// its compact JSON encoding, so field order here is part of the wire format.
type body struct {
	Src int64   `json:"src"`
	Pts int64   `json:"pts"`
	Ptp int     `json:"ptp"`
	Pid int64   `json:"pid"`
	Psb int     `json:"psb"`
	Pld Payload `json:"pld"`
}

// Packet is a complete wire packet including its checksum.
type Packet struct {
	body
	Cks string `json:"cks"`
}

// envelope is the websocket relay form of a packet.
type envelope struct {
	Type   string `json:"type"`
	Packet Packet `json:"packet"`
}

// Stats holds publisher run statistics
type Stats struct {
	PacketsPublished int
	DuplicatesSent   int
	CorruptedSent    int
	PublishFailures  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

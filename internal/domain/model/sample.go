// Package model contains domain models passed between layers.
package model

import "time"

// Vector3 is a position in meters in the capture volume frame.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a unit orientation quaternion as reported by the emitter.
type Quaternion struct {
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
	QW float64 `json:"qw"`
}

// Sample is one validated pose observation for a marker. A Sample is only
// ever constructed for geometrically finite input; non-finite positions are
// discarded before a Sample exists.
type Sample struct {
	ID          string     `json:"id"`          // unique id assigned at ingestion
	ReceivedAt  int64      `json:"receivedAt"`  // receive timestamp, ms since epoch
	MarkerID    string     `json:"markerId"`    // emitting entity
	PacketSeq   int64      `json:"packetSeq"`   // emitter-reported sequence, display/export only
	Checksum    string     `json:"checksum"`    // opaque token, duplicate detection only
	Position    Vector3    `json:"position"`
	Orientation Quaternion `json:"orientation"`
	Valid       bool       `json:"valid"`
	Velocity    float64    `json:"velocity"` // m/s, filled in after trajectory insertion
}

// ReceivedTime converts ReceivedAt to a time.Time.
func (s Sample) ReceivedTime() time.Time {
	return time.UnixMilli(s.ReceivedAt)
}

// TrajectoryPoint is the rendering-oriented projection of a sample.
type TrajectoryPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Timestamp int64   `json:"timestamp"` // ms since epoch, receive time base
	Velocity  float64 `json:"velocity"`  // m/s
}

// Time converts Timestamp to a time.Time.
func (p TrajectoryPoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}

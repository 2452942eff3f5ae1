// Package telemetry converts raw inbound MQTT payloads into canonical
// samples. Malformed input never reaches downstream components: anything that
// is not a finite pose update is rejected here with a typed error.
package telemetry

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/robotat/mocapd/internal/domain/model"
)

// Packet type codes carried in the ptp envelope field.
const (
	packetTypeData    = 0
	packetTypeCommand = 1
	packetTypeMocap   = 2
)

// Normalizer parses envelopes and produces validated samples.
type Normalizer struct {
	now func() time.Time
	id  func() string
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithClock overrides the receive-time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithIDFunc overrides sample id generation. Used in tests.
func WithIDFunc(id func() string) Option {
	return func(n *Normalizer) {
		if id != nil {
			n.id = id
		}
	}
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now: time.Now,
		id:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts one raw message into a Sample.
//
// The envelope is path-tolerant: the packet object may sit under a "packet"
// key (websocket relay form) or be the body itself (direct broker form), and
// the quaternion may be under pose.orientation or pose.rotation. Messages
// whose type tag does not indicate a pose update return ErrNotTelemetry;
// messages with missing or non-finite position return ErrBadGeometry. No
// error is fatal to the caller.
func (n *Normalizer) Normalize(topic string, payload []byte) (model.Sample, error) {
	if !gjson.ValidBytes(payload) {
		return model.Sample{}, ErrBadEnvelope
	}
	body := gjson.ParseBytes(payload)

	packet := body
	if body.Get("type").String() == "mqtt_message" {
		packet = body.Get("packet")
		if !packet.Exists() {
			packet = body.Get("data.packet")
		}
		if !packet.Exists() {
			packet = body.Get("data")
		}
		if !packet.Exists() {
			return model.Sample{}, ErrNotTelemetry
		}
	}

	// Only MOCAP packets carry pose updates. A missing ptp tag is tolerated
	// as long as a pose payload is present.
	if ptp := packet.Get("ptp"); ptp.Exists() && ptp.Int() != packetTypeMocap {
		return model.Sample{}, ErrNotTelemetry
	}
	pose := packet.Get("pld.pose")
	if !pose.Exists() {
		return model.Sample{}, ErrNotTelemetry
	}

	pos, err := finiteVector(pose.Get("position"))
	if err != nil {
		return model.Sample{}, err
	}

	sample := model.Sample{
		ID:          n.id(),
		ReceivedAt:  n.now().UnixMilli(),
		MarkerID:    markerID(topic, packet),
		PacketSeq:   packet.Get("pid").Int(), // missing -> 0
		Checksum:    packet.Get("cks").String(),
		Position:    pos,
		Orientation: quaternion(pose),
		Valid:       true,
	}
	return sample, nil
}

// markerID derives the marker identifier, preferring the routing key and
// falling back to the packet's source field.
func markerID(topic string, packet gjson.Result) string {
	if i := strings.LastIndex(topic, "/"); i >= 0 && i < len(topic)-1 {
		if seg := topic[i+1:]; seg != "" && seg != "all" && seg != "#" {
			return seg
		}
	}
	src := packet.Get("src")
	if src.Type == gjson.String && src.String() != "" {
		return src.String()
	}
	return SourceName(src.Int())
}

func finiteVector(position gjson.Result) (model.Vector3, error) {
	var v model.Vector3
	for _, c := range []struct {
		key string
		dst *float64
	}{
		{"x", &v.X},
		{"y", &v.Y},
		{"z", &v.Z},
	} {
		f := position.Get(c.key)
		if f.Type != gjson.Number {
			return model.Vector3{}, ErrBadGeometry
		}
		val := f.Float()
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return model.Vector3{}, ErrBadGeometry
		}
		*c.dst = val
	}
	return v, nil
}

// quaternion reads the orientation, tolerating the publisher's "rotation"
// spelling. Missing components default to zero except qw, which defaults to 1.
func quaternion(pose gjson.Result) model.Quaternion {
	q := pose.Get("orientation")
	if !q.Exists() {
		q = pose.Get("rotation")
	}
	out := model.Quaternion{QW: 1}
	if !q.Exists() {
		return out
	}
	out.QX = q.Get("qx").Float()
	out.QY = q.Get("qy").Float()
	out.QZ = q.Get("qz").Float()
	if w := q.Get("qw"); w.Exists() {
		out.QW = w.Float()
	}
	return out
}

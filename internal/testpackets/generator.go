package testpackets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"time"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Source code assignment and motion shape constants.
const (
	firstSourceCode = 10 // Pololu range start
	mocapPacketType = 2

	baseRadius     = 0.4 // meters
	radiusStep     = 0.15
	baseAngularVel = 0.8 // radians per second
	angularVelStep = 0.2
	baseHeight     = 0.10
	heightStep     = 0.05
	bobAmplitude   = 0.04
	jitterScale    = 0.01
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generator produces packets for a fixed set of synthetic sources. Each
// source follows its own circular path at its own height so every marker gets
// a visually distinct trajectory and velocity profile.
type generator struct {
	epoch time.Time
	seq   []int64
}

func newGenerator(sources int) *generator {
	return &generator{
		epoch: time.Now(),
		seq:   make([]int64, sources),
	}
}

// next builds the packet for source index i at wall time now.
func (g *generator) next(i int, now time.Time) Packet {
	g.seq[i]++
	t := now.Sub(g.epoch).Seconds()

	radius := baseRadius + float64(i)*radiusStep
	omega := baseAngularVel + float64(i)*angularVelStep
	phase := float64(i) * math.Pi / 4

	angle := omega*t + phase
	b := body{
		Src: int64(firstSourceCode + i),
		Pts: now.UnixMilli(),
		Ptp: mocapPacketType,
		Pid: g.seq[i],
		Psb: 0,
		Pld: Payload{
			Pose: Pose{
				Position: Vector3{
					X: radius*math.Cos(angle) + jitter(),
					Y: radius*math.Sin(angle) + jitter(),
					Z: baseHeight + float64(i)*heightStep + bobAmplitude*math.Sin(t*2) + jitter(),
				},
				Rotation: yawQuaternion(angle),
			},
		},
	}

	return Packet{body: b, Cks: checksum(b)}
}

func jitter() float64 {
	return (getRandomFloat() - 0.5) * jitterScale
}

// yawQuaternion builds a rotation about the vertical axis so the marker
// always faces along its path.
func yawQuaternion(angle float64) Quaternion {
	half := angle / 2
	return Quaternion{QZ: math.Sin(half), QW: math.Cos(half)}
}

// checksum is the hex SHA-256 of the packet body's compact JSON encoding,
// matching what the lab firmware stamps into cks.
func checksum(b body) string {
	raw, err := json.Marshal(b)
	if err != nil {
		// body has no unmarshalable fields; keep the error path visible anyway.
		return fmt.Sprintf("marshal-failed-%d", b.Pid)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// encode renders the packet for the wire, optionally in the relay envelope.
func encode(p Packet, wrap bool) ([]byte, error) {
	if wrap {
		return json.Marshal(envelope{Type: "mqtt_message", Packet: p})
	}
	return json.Marshal(p)
}

// corrupt mangles an encoded packet so it exercises the monitor's discard
// paths: half the time the tail is chopped off mid-document, otherwise the
// position becomes a non-numeric value.
func corrupt(raw []byte) []byte {
	if getRandomFloat() < 0.5 && len(raw) > 2 {
		return raw[:len(raw)/2]
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	// Swap the first "position" key for one the parser will not find.
	return []byte(replaceFirst(string(out), `"position"`, `"positron"`))
}

func replaceFirst(s, old, repl string) string {
	for i := 0; i+len(old) <= len(s); i++ {
		if s[i:i+len(old)] == old {
			return s[:i] + repl + s[i+len(old):]
		}
	}
	return s
}

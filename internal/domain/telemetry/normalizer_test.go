package telemetry_test

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robotat/mocapd/internal/domain/telemetry"
)

func fixedNormalizer() *telemetry.Normalizer {
	return telemetry.New(
		telemetry.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
		telemetry.WithIDFunc(func() string { return "fixed-id" }),
	)
}

func TestNormalize(t *testing.T) {
	Convey("Given a normalizer with a fixed clock", t, func() {
		n := fixedNormalizer()

		Convey("When normalizing a direct broker packet", func() {
			payload := []byte(`{
				"src": 13, "pts": 1699999999.5, "ptp": 2, "pid": 7, "psb": 120,
				"pld": {"pose": {
					"position": {"x": 1.5, "y": -2.25, "z": 0.75},
					"rotation": {"qx": 0.1, "qy": 0.2, "qz": 0.3, "qw": 0.9}
				}},
				"cks": "deadbeef"
			}`)
			s, err := n.Normalize("mocap/all", payload)

			Convey("Then it should produce a valid sample", func() {
				So(err, ShouldBeNil)
				So(s.Valid, ShouldBeTrue)
				So(s.ID, ShouldEqual, "fixed-id")
				So(s.ReceivedAt, ShouldEqual, 1700000000000)
				So(s.MarkerID, ShouldEqual, "POLOLU_03")
				So(s.PacketSeq, ShouldEqual, 7)
				So(s.Checksum, ShouldEqual, "deadbeef")
				So(s.Position.X, ShouldEqual, 1.5)
				So(s.Position.Y, ShouldEqual, -2.25)
				So(s.Position.Z, ShouldEqual, 0.75)
				So(s.Orientation.QW, ShouldEqual, 0.9)
			})
		})

		Convey("When normalizing the websocket relay form", func() {
			payload := []byte(`{
				"type": "mqtt_message",
				"topic": "mocap/all",
				"packet": {
					"src": 50, "ptp": 2, "pid": 1,
					"pld": {"pose": {
						"position": {"x": 0, "y": 0, "z": 1},
						"orientation": {"qx": 0, "qy": 0, "qz": 0, "qw": 1}
					}},
					"cks": "c1"
				}
			}`)
			s, err := n.Normalize("mocap/all", payload)

			Convey("Then the nested packet is used", func() {
				So(err, ShouldBeNil)
				So(s.MarkerID, ShouldEqual, "CRAZYFLIE_00")
				So(s.Position.Z, ShouldEqual, 1.0)
			})
		})

		Convey("When the routing key names the marker", func() {
			payload := []byte(`{"ptp":2,"pld":{"pose":{"position":{"x":0,"y":0,"z":0}}}}`)
			s, err := n.Normalize("mocap/MAXARM_05", payload)

			Convey("Then the topic segment wins over src", func() {
				So(err, ShouldBeNil)
				So(s.MarkerID, ShouldEqual, "MAXARM_05")
			})
		})

		Convey("When optional fields are missing", func() {
			payload := []byte(`{"ptp":2,"pld":{"pose":{"position":{"x":1,"y":2,"z":3}}}}`)
			s, err := n.Normalize("mocap/all", payload)

			Convey("Then defaults apply", func() {
				So(err, ShouldBeNil)
				So(s.PacketSeq, ShouldEqual, 0)
				So(s.Checksum, ShouldEqual, "")
				So(s.Orientation.QX, ShouldEqual, 0.0)
				So(s.Orientation.QW, ShouldEqual, 1.0)
			})
		})

		Convey("When the position is missing a component", func() {
			payload := []byte(`{"ptp":2,"pld":{"pose":{"position":{"x":1,"y":2}}}}`)
			_, err := n.Normalize("mocap/all", payload)

			Convey("Then the message is rejected as bad geometry", func() {
				So(err, ShouldEqual, telemetry.ErrBadGeometry)
			})
		})

		Convey("When a position component is not numeric", func() {
			for _, bad := range []string{`"NaN"`, `"Infinity"`, `null`, `"x"`} {
				payload := fmt.Appendf(nil,
					`{"ptp":2,"pld":{"pose":{"position":{"x":%s,"y":0,"z":0}}}}`, bad)
				_, err := n.Normalize("mocap/all", payload)
				So(err, ShouldEqual, telemetry.ErrBadGeometry)
			}
		})

		Convey("When the packet is a command rather than a pose update", func() {
			payload := []byte(`{"ptp":1,"pid":100,"pld":{}}`)
			_, err := n.Normalize("pololu01/cmd", payload)

			Convey("Then it is ignored as non-telemetry", func() {
				So(err, ShouldEqual, telemetry.ErrNotTelemetry)
			})
		})

		Convey("When the payload is not JSON", func() {
			_, err := n.Normalize("mocap/all", []byte("::garbage::"))

			Convey("Then the envelope is rejected", func() {
				So(err, ShouldEqual, telemetry.ErrBadEnvelope)
			})
		})
	})
}

func TestSourceName(t *testing.T) {
	Convey("Given the lab source code ranges", t, func() {
		So(telemetry.SourceName(0), ShouldEqual, "ROBOTAT_SERVER")
		So(telemetry.SourceName(1), ShouldEqual, "USER_PC")
		So(telemetry.SourceName(10), ShouldEqual, "POLOLU_00")
		So(telemetry.SourceName(42), ShouldEqual, "POLOLU_32")
		So(telemetry.SourceName(50), ShouldEqual, "CRAZYFLIE_00")
		So(telemetry.SourceName(100), ShouldEqual, "MAXARM_20")
		So(telemetry.SourceName(7), ShouldEqual, "SRC_7")
	})
}

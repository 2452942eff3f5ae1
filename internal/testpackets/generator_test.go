package testpackets

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/robotat/mocapd/internal/domain/telemetry"
)

func TestGenerator(t *testing.T) {
	convey.Convey("Given a packet generator", t, func() {
		gen := newGenerator(2)
		now := time.Now()
		norm := telemetry.New()

		convey.Convey("When generating packets for the first source", func() {
			p1 := gen.next(0, now)
			p2 := gen.next(0, now.Add(50*time.Millisecond))

			convey.Convey("Then sequence numbers increase and checksums differ", func() {
				convey.So(p1.Pid, convey.ShouldEqual, 1)
				convey.So(p2.Pid, convey.ShouldEqual, 2)
				convey.So(p1.Cks, convey.ShouldNotEqual, p2.Cks)
				convey.So(p1.Cks, convey.ShouldHaveLength, 64)
			})

			convey.Convey("And the monitor accepts the direct broker form", func() {
				raw, err := encode(p1, false)
				convey.So(err, convey.ShouldBeNil)

				sample, err := norm.Normalize("mocap/all", raw)
				convey.So(err, convey.ShouldBeNil)
				convey.So(sample.MarkerID, convey.ShouldEqual, "POLOLU_00")
				convey.So(sample.PacketSeq, convey.ShouldEqual, p1.Pid)
				convey.So(sample.Checksum, convey.ShouldEqual, p1.Cks)
			})

			convey.Convey("And the monitor accepts the relay envelope form", func() {
				raw, err := encode(p1, true)
				convey.So(err, convey.ShouldBeNil)

				sample, err := norm.Normalize("mocap/all", raw)
				convey.So(err, convey.ShouldBeNil)
				convey.So(sample.MarkerID, convey.ShouldEqual, "POLOLU_00")
			})
		})

		convey.Convey("When sources differ", func() {
			a := gen.next(0, now)
			b := gen.next(1, now)

			convey.Convey("Then they map to distinct markers", func() {
				rawA, _ := encode(a, false)
				rawB, _ := encode(b, false)

				sa, errA := norm.Normalize("mocap/all", rawA)
				sb, errB := norm.Normalize("mocap/all", rawB)
				convey.So(errA, convey.ShouldBeNil)
				convey.So(errB, convey.ShouldBeNil)
				convey.So(sa.MarkerID, convey.ShouldEqual, "POLOLU_00")
				convey.So(sb.MarkerID, convey.ShouldEqual, "POLOLU_01")
			})
		})

		convey.Convey("When a packet is corrupted", func() {
			raw, err := encode(gen.next(0, now), false)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the monitor rejects the mangled encoding", func() {
				_, err := norm.Normalize("mocap/all", corrupt(raw))
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

package service

import (
	"context"
	"testing"
	"time"

	convey "github.com/smartystreets/goconvey/convey"

	"github.com/robotat/mocapd/internal/domain/model"
)

func TestServiceLifecycle(t *testing.T) {
	convey.Convey("Given a service that does not dial the broker", t, func() {
		ctx := context.Background()
		svc := New(
			WithAutoConnect(false),
			WithQueueSize(16),
			WithRenderPeriod(10*time.Millisecond),
		)

		convey.Convey("When the service starts", func() {
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then starting again is a no-op", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
			})

			convey.Convey("Then stats report an idle pipeline", func() {
				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldBeTrue)
				convey.So(stats["ingesting"], convey.ShouldBeFalse)
				convey.So(stats["brokerConnected"], convey.ShouldBeFalse)
				convey.So(stats["markers"], convey.ShouldEqual, 0)
			})

			convey.Convey("Then the wiring accessors are live", func() {
				convey.So(svc.Store(), convey.ShouldNotBeNil)
				convey.So(svc.Surfaces(), convey.ShouldNotBeNil)
				convey.So(svc.Exporter(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the service is stopped twice", func() {
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			svc.Stop()

			convey.Convey("Then the second stop is a no-op", func() {
				svc.Stop()
				convey.So(svc.GetStats()["started"], convey.ShouldBeFalse)
			})
		})
	})
}

func TestServiceReset(t *testing.T) {
	convey.Convey("Given a started service with accumulated state", t, func() {
		ctx := context.Background()
		svc := New(WithAutoConnect(false), WithRenderPeriod(time.Hour))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		svc.Store().Upsert(ctx, model.Sample{
			ID:         "s-1",
			ReceivedAt: time.Now().UnixMilli(),
			MarkerID:   "POLOLU_01",
			PacketSeq:  1,
			Checksum:   "cks-1",
			Position:   model.Vector3{X: 1, Y: 2, Z: 3},
			Valid:      true,
		})
		convey.So(svc.Store().Count(ctx), convey.ShouldEqual, 1)

		convey.Convey("When the pipeline is reset", func() {
			convey.So(svc.Reset(ctx), convey.ShouldBeNil)

			convey.Convey("Then markers, stats, and surfaces are empty", func() {
				convey.So(svc.Store().Count(ctx), convey.ShouldEqual, 0)
				convey.So(svc.Surfaces().Len(), convey.ShouldEqual, 0)

				stats := svc.GetStats()
				convey.So(stats["registrySize"], convey.ShouldEqual, 0)
			})
		})
	})
}

func TestServiceIngestControlWithoutBroker(t *testing.T) {
	convey.Convey("Given a started service with no broker listening", t, func() {
		ctx := context.Background()
		svc := New(
			WithAutoConnect(false),
			WithBrokerURL("tcp://127.0.0.1:1"),
			WithRenderPeriod(time.Hour),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("When ingestion start is requested", func() {
			err := svc.StartIngest(ctx)

			convey.Convey("Then the connect failure surfaces without killing the service", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(svc.GetStats()["started"], convey.ShouldBeTrue)
				convey.So(svc.StopIngest(ctx), convey.ShouldBeNil)
			})
		})
	})
}

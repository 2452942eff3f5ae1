package repository_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robotat/mocapd/internal/adapters/repository"
	"github.com/robotat/mocapd/internal/domain/model"
)

// feed inserts n samples for marker with 10 ms spacing and x advancing by i.
func feed(ctx context.Context, s repository.Store, marker string, n int, t0 int64) {
	for i := 0; i < n; i++ {
		s.Upsert(ctx, model.Sample{
			ID:         fmt.Sprintf("%s-%d", marker, i),
			MarkerID:   marker,
			ReceivedAt: t0 + int64(i)*10,
			PacketSeq:  int64(i),
			Checksum:   fmt.Sprintf("%s-cks-%d", marker, i),
			Position:   model.Vector3{X: float64(i)},
			Valid:      true,
		})
	}
}

func TestMarkerStore(t *testing.T) {
	Convey("Given an empty marker store", t, func() {
		ctx := context.Background()
		store := repository.NewMarkerStore()

		Convey("When the first sample for a marker arrives", func() {
			feed(ctx, store, "m1", 1, 1000)

			Convey("Then the record is created lazily with default visibility", func() {
				So(store.Count(ctx), ShouldEqual, 1)
				So(store.Markers(ctx), ShouldResemble, []string{"m1"})
				v, ok := store.Visibility(ctx, "m1")
				So(ok, ShouldBeTrue)
				So(v, ShouldResemble, model.AllVisible())
			})

			Convey("Then the first trajectory point has zero velocity", func() {
				traj := store.TrajectorySnapshot(ctx, "m1")
				So(traj, ShouldHaveLength, 1)
				So(traj[0].Velocity, ShouldEqual, 0.0)
			})
		})

		Convey("When consecutive samples arrive", func() {
			store.Upsert(ctx, model.Sample{
				MarkerID: "m1", ReceivedAt: 1000, Position: model.Vector3{}, Valid: true,
			})
			got := store.Upsert(ctx, model.Sample{
				MarkerID: "m1", ReceivedAt: 2000,
				Position: model.Vector3{X: 3, Y: 4}, Valid: true,
			})

			Convey("Then the upserted sample carries its computed velocity", func() {
				So(got.Velocity, ShouldEqual, 5.0)
				traj := store.TrajectorySnapshot(ctx, "m1")
				So(traj[len(traj)-1].Velocity, ShouldEqual, 5.0)
			})
		})

		Convey("When more samples than the caps arrive", func() {
			feed(ctx, store, "m1", 250, 1000)

			Convey("Then history holds exactly the 200 newest, most-recent-first", func() {
				hist := store.HistorySnapshot(ctx, "m1")
				So(hist, ShouldHaveLength, 200)
				So(hist[0].ID, ShouldEqual, "m1-249")
				So(hist[199].ID, ShouldEqual, "m1-50")
			})

			Convey("Then the trajectory holds exactly the 100 newest, oldest-first", func() {
				traj := store.TrajectorySnapshot(ctx, "m1")
				So(traj, ShouldHaveLength, 100)
				So(traj[0].Timestamp, ShouldEqual, 1000+int64(150)*10)
				So(traj[99].Timestamp, ShouldEqual, 1000+int64(249)*10)
			})
		})

		Convey("When custom caps are configured", func() {
			small := repository.NewMarkerStore(
				repository.WithHistoryCap(5),
				repository.WithTrajectoryCap(3),
			)
			feed(ctx, small, "m1", 10, 0)

			Convey("Then both sequences truncate to their caps", func() {
				So(small.HistorySnapshot(ctx, "m1"), ShouldHaveLength, 5)
				So(small.TrajectorySnapshot(ctx, "m1"), ShouldHaveLength, 3)
			})
		})

		Convey("When several markers accumulate", func() {
			feed(ctx, store, "m2", 3, 1000)
			feed(ctx, store, "m1", 2, 2000)

			Convey("Then markers list in first-seen order", func() {
				So(store.Markers(ctx), ShouldResemble, []string{"m2", "m1"})
			})

			Convey("Then AllValidSamples concatenates everything", func() {
				So(store.AllValidSamples(ctx), ShouldHaveLength, 5)
			})
		})

		Convey("When toggling visibility", func() {
			feed(ctx, store, "m1", 1, 0)
			err := store.SetVisibility(ctx, "m1", model.KindXY, false)

			Convey("Then only that kind changes and data is untouched", func() {
				So(err, ShouldBeNil)
				v, _ := store.Visibility(ctx, "m1")
				So(v.XY, ShouldBeFalse)
				So(v.Height, ShouldBeTrue)
				So(store.HistorySnapshot(ctx, "m1"), ShouldHaveLength, 1)
			})

			Convey("And unknown markers or kinds are rejected", func() {
				So(store.SetVisibility(ctx, "ghost", model.KindXY, false), ShouldEqual, repository.ErrNotFound)
				So(store.SetVisibility(ctx, "m1", model.ChartKind("pie"), false), ShouldEqual, repository.ErrUnknownKind)
			})
		})

		Convey("When toggling figure maximization", func() {
			feed(ctx, store, "m1", 1, 0)
			So(store.Maximized(ctx, "m1", model.KindVelocity), ShouldBeFalse)
			So(store.SetMaximized(ctx, "m1", model.KindVelocity, true), ShouldBeNil)

			Convey("Then the flag is scoped to the (marker, kind) pair", func() {
				So(store.Maximized(ctx, "m1", model.KindVelocity), ShouldBeTrue)
				So(store.Maximized(ctx, "m1", model.KindXY), ShouldBeFalse)
			})
		})

		Convey("When summarizing a marker", func() {
			store.Upsert(ctx, model.Sample{MarkerID: "m1", ReceivedAt: 1000, Valid: true})
			store.Upsert(ctx, model.Sample{
				MarkerID: "m1", ReceivedAt: 2000,
				Position: model.Vector3{X: 3, Y: 4}, Valid: true,
			})
			sum, err := store.Summary(ctx, "m1")

			Convey("Then counts and velocity statistics are populated", func() {
				So(err, ShouldBeNil)
				So(sum.Samples, ShouldEqual, 2)
				So(sum.LastSeen, ShouldEqual, 2000)
				So(sum.MaxVelocity, ShouldEqual, 5.0)
				So(sum.MeanVelocity, ShouldEqual, 2.5)
				So(sum.StddevVelocity, ShouldBeGreaterThan, 0)
			})

			Convey("And unknown markers return ErrNotFound", func() {
				_, err := store.Summary(ctx, "ghost")
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When resetting the store", func() {
			feed(ctx, store, "m1", 5, 0)
			So(store.SetMaximized(ctx, "m1", model.KindXY, true), ShouldBeNil)
			store.Reset(ctx)

			Convey("Then records, visibility, and figure state all clear", func() {
				So(store.Count(ctx), ShouldEqual, 0)
				So(store.Markers(ctx), ShouldBeEmpty)
				_, ok := store.Visibility(ctx, "m1")
				So(ok, ShouldBeFalse)
				So(store.Maximized(ctx, "m1", model.KindXY), ShouldBeFalse)
			})

			Convey("And a double reset leaves the same empty state", func() {
				store.Reset(ctx)
				So(store.Count(ctx), ShouldEqual, 0)
				So(store.Summaries(ctx), ShouldBeEmpty)
			})
		})
	})
}

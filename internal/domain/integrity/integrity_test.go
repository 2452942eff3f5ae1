package integrity_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robotat/mocapd/internal/domain/dedupe"
	"github.com/robotat/mocapd/internal/domain/integrity"
	"github.com/robotat/mocapd/internal/domain/model"
)

func sample(marker, cks string, seq int64) model.Sample {
	return model.Sample{
		ID:        "id-" + cks,
		MarkerID:  marker,
		Checksum:  cks,
		PacketSeq: seq,
		Valid:     true,
	}
}

func TestTracker(t *testing.T) {
	Convey("Given a tracker over a fresh registry", t, func() {
		ctx := context.Background()
		tr := integrity.NewTracker(dedupe.NewRegistry())

		Convey("Then the initial snapshot is the neutral state", func() {
			So(tr.Snapshot(), ShouldResemble, integrity.Stats{IntegrityPercent: 100})
		})

		Convey("When observing distinct samples", func() {
			r1 := tr.Observe(ctx, sample("m1", "a", 1))
			r2 := tr.Observe(ctx, sample("m1", "b", 2))

			Convey("Then totals and valid track together and nothing is duplicate", func() {
				So(r1.Duplicate, ShouldBeFalse)
				So(r2.Duplicate, ShouldBeFalse)
				st := tr.Snapshot()
				So(st.Total, ShouldEqual, 2)
				So(st.Valid, ShouldEqual, 2)
				So(st.Duplicates, ShouldEqual, 0)
				So(st.IntegrityPercent, ShouldEqual, 100.0)
				So(st.DuplicateRate, ShouldEqual, 0.0)
			})
		})

		Convey("When observing two samples with the same checksum", func() {
			tr.Observe(ctx, sample("m1", "same", 1))
			r := tr.Observe(ctx, sample("m1", "same", 2))

			Convey("Then duplicates increments exactly once and the rate is 50", func() {
				So(r.Duplicate, ShouldBeTrue)
				st := tr.Snapshot()
				So(st.Total, ShouldEqual, 2)
				So(st.Duplicates, ShouldEqual, 1)
				So(st.DuplicateRate, ShouldEqual, 50.0)
			})
		})

		Convey("When a marker skips sequence numbers", func() {
			tr.Observe(ctx, sample("m1", "a", 1))
			r := tr.Observe(ctx, sample("m1", "b", 5))

			Convey("Then the gap is counted as estimated loss", func() {
				So(r.Lost, ShouldEqual, 3)
				st := tr.Snapshot()
				So(st.LostEstimated, ShouldEqual, 3)
				So(st.LossRate, ShouldEqual, 60.0) // 3 lost of 5 expected
			})
		})

		Convey("When a marker's sequence restarts", func() {
			tr.Observe(ctx, sample("m1", "a", 100))
			r := tr.Observe(ctx, sample("m1", "b", 1))

			Convey("Then no loss is counted and tracking resynchronizes", func() {
				So(r.Lost, ShouldEqual, 0)
				So(tr.Observe(ctx, sample("m1", "c", 2)).Lost, ShouldEqual, 0)
				So(tr.Snapshot().LostEstimated, ShouldEqual, 0)
			})
		})

		Convey("When gaps appear on independent markers", func() {
			tr.Observe(ctx, sample("m1", "a", 1))
			tr.Observe(ctx, sample("m2", "b", 10))
			r := tr.Observe(ctx, sample("m2", "c", 12))

			Convey("Then only that marker's gap counts", func() {
				So(r.Lost, ShouldEqual, 1)
				So(tr.Snapshot().LostEstimated, ShouldEqual, 1)
			})
		})

		Convey("When resetting", func() {
			tr.Observe(ctx, sample("m1", "a", 1))
			tr.Observe(ctx, sample("m1", "a", 2))
			tr.Reset(ctx)

			neutral := integrity.Stats{IntegrityPercent: 100}

			Convey("Then counters, rates, and the registry clear together", func() {
				So(tr.Snapshot(), ShouldResemble, neutral)
				So(tr.RegistrySize(), ShouldEqual, 0)
				So(tr.Observe(ctx, sample("m1", "a", 1)).Duplicate, ShouldBeFalse)
			})

			Convey("And a second reset leaves the identical state", func() {
				tr.Reset(ctx)
				So(tr.Snapshot(), ShouldResemble, neutral)
				So(tr.RegistrySize(), ShouldEqual, 0)
			})
		})
	})
}

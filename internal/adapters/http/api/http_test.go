package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robotat/mocapd/internal/adapters/export"
	"github.com/robotat/mocapd/internal/adapters/http/api"
	"github.com/robotat/mocapd/internal/adapters/render"
	"github.com/robotat/mocapd/internal/adapters/repository"
	"github.com/robotat/mocapd/internal/domain/model"
)

type mockControl struct {
	started int
	stopped int
	resets  int
	fail    error
}

func (m *mockControl) StartIngest(context.Context) error {
	if m.fail != nil {
		return m.fail
	}
	m.started++
	return nil
}

func (m *mockControl) StopIngest(context.Context) error {
	if m.fail != nil {
		return m.fail
	}
	m.stopped++
	return nil
}

func (m *mockControl) Reset(context.Context) error {
	if m.fail != nil {
		return m.fail
	}
	m.resets++
	return nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"brokerConnected": true,
		"integrity":       map[string]interface{}{"total": 3},
	}
}

func testSample(seq int64, at time.Time) model.Sample {
	return model.Sample{
		ID:         fmt.Sprintf("s-%d", seq),
		ReceivedAt: at.UnixMilli(),
		MarkerID:   "POLOLU_01",
		PacketSeq:  seq,
		Checksum:   fmt.Sprintf("cks-%d", seq),
		Position:   model.Vector3{X: 0.1 * float64(seq), Y: 0.2, Z: 0.3},
		Valid:      true,
	}
}

type fixture struct {
	store    *repository.MarkerStore
	surfaces *render.SurfaceTable
	control  *mockControl
	mux      *http.ServeMux
}

func newFixture(seed int) *fixture {
	f := &fixture{
		store:    repository.NewMarkerStore(),
		surfaces: render.NewSurfaceTable(),
		control:  &mockControl{},
	}
	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	for i := 0; i < seed; i++ {
		f.store.Upsert(context.Background(), testSample(int64(i+1), at.Add(time.Duration(i)*time.Second)))
	}
	server := api.NewServer(f.store, f.surfaces, mockStats{}, f.control, export.New(f.store))
	f.mux = http.NewServeMux()
	server.Register(context.Background(), f.mux)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the operator API", t, func() {
		f := newFixture(0)

		Convey("When GET /healthz", func() {
			rec := f.do(http.MethodGet, "/healthz", "")

			Convey("Then it reports ok", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When GET /metricz", func() {
			rec := f.do(http.MethodGet, "/metricz", "")

			Convey("Then the Prometheus registry is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "mocapd_pipeline")
			})
		})

		Convey("When GET /api/stats", func() {
			rec := f.do(http.MethodGet, "/api/stats", "")

			Convey("Then the provider payload comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"brokerConnected":true`)
			})
		})
	})
}

func TestMarkerRoutes(t *testing.T) {
	Convey("Given the operator API over a seeded store", t, func() {
		f := newFixture(3)

		Convey("When GET /api/markers", func() {
			rec := f.do(http.MethodGet, "/api/markers", "")

			Convey("Then it lists one summary", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var summaries []repository.Summary
				So(json.Unmarshal(rec.Body.Bytes(), &summaries), ShouldBeNil)
				So(summaries, ShouldHaveLength, 1)
				So(summaries[0].MarkerID, ShouldEqual, "POLOLU_01")
				So(summaries[0].Samples, ShouldEqual, 3)
			})
		})

		Convey("When GET /api/markers/POLOLU_01/history", func() {
			rec := f.do(http.MethodGet, "/api/markers/POLOLU_01/history", "")

			Convey("Then history comes back newest-first", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var hist []model.Sample
				So(json.Unmarshal(rec.Body.Bytes(), &hist), ShouldBeNil)
				So(hist, ShouldHaveLength, 3)
				So(hist[0].PacketSeq, ShouldEqual, 3)
			})
		})

		Convey("When GET /api/markers/POLOLU_01/trajectory", func() {
			rec := f.do(http.MethodGet, "/api/markers/POLOLU_01/trajectory", "")

			Convey("Then trajectory comes back oldest-first", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var traj []model.TrajectoryPoint
				So(json.Unmarshal(rec.Body.Bytes(), &traj), ShouldBeNil)
				So(traj, ShouldHaveLength, 3)
				So(traj[0].X, ShouldAlmostEqual, 0.1)
			})
		})

		Convey("When an unknown marker is queried", func() {
			rec := f.do(http.MethodGet, "/api/markers/GHOST/history", "")

			Convey("Then it is a 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When POST /api/markers/POLOLU_01/visibility hides a kind", func() {
			rec := f.do(http.MethodPost, "/api/markers/POLOLU_01/visibility", `{"kind":"height","visible":false}`)

			Convey("Then the toggle lands in the store", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				vis, ok := f.store.Visibility(context.Background(), "POLOLU_01")
				So(ok, ShouldBeTrue)
				So(vis.Height, ShouldBeFalse)
				So(vis.XY, ShouldBeTrue)
			})
		})

		Convey("When POST visibility with a bogus kind", func() {
			rec := f.do(http.MethodPost, "/api/markers/POLOLU_01/visibility", `{"kind":"pie","visible":false}`)

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When POST /api/markers/POLOLU_01/figure maximizes a chart", func() {
			rec := f.do(http.MethodPost, "/api/markers/POLOLU_01/figure", `{"kind":"xy","maximized":true}`)

			Convey("Then the figure state lands in the store", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(f.store.Maximized(context.Background(), "POLOLU_01", model.KindXY), ShouldBeTrue)
			})
		})
	})
}

func TestControlRoutes(t *testing.T) {
	Convey("Given the operator API", t, func() {
		f := newFixture(0)

		Convey("When POST /api/ingest/start and /api/ingest/stop", func() {
			start := f.do(http.MethodPost, "/api/ingest/start", "")
			stop := f.do(http.MethodPost, "/api/ingest/stop", "")

			Convey("Then both hit the control surface", func() {
				So(start.Code, ShouldEqual, http.StatusOK)
				So(stop.Code, ShouldEqual, http.StatusOK)
				So(f.control.started, ShouldEqual, 1)
				So(f.control.stopped, ShouldEqual, 1)
			})
		})

		Convey("When POST /api/reset", func() {
			rec := f.do(http.MethodPost, "/api/reset", "")

			Convey("Then the reset runs", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(f.control.resets, ShouldEqual, 1)
			})
		})

		Convey("When GET is used on a control route", func() {
			rec := f.do(http.MethodGet, "/api/reset", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestExportRoutes(t *testing.T) {
	Convey("Given the operator API over a seeded store", t, func() {
		f := newFixture(2)

		Convey("When GET /api/export/csv", func() {
			rec := f.do(http.MethodGet, "/api/export/csv", "")

			Convey("Then a CSV attachment comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Disposition"), ShouldContainSubstring, "mocap_data_")
				So(rec.Header().Get("Content-Disposition"), ShouldContainSubstring, ".csv")
				So(rec.Body.String(), ShouldStartWith, "Timestamp,Source,PacketID,X,Y,Z,Velocity,Checksum")
			})
		})

		Convey("When GET /api/export/json", func() {
			rec := f.do(http.MethodGet, "/api/export/json", "")

			Convey("Then a JSON attachment comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Disposition"), ShouldContainSubstring, ".json")
				var decoded []model.Sample
				So(json.Unmarshal(rec.Body.Bytes(), &decoded), ShouldBeNil)
				So(decoded, ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given the operator API over an empty store", t, func() {
		f := newFixture(0)

		Convey("When GET /api/export/csv", func() {
			rec := f.do(http.MethodGet, "/api/export/csv", "")

			Convey("Then there is nothing to export", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
				So(rec.Body.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestChartRoutes(t *testing.T) {
	Convey("Given the operator API with a rendered surface", t, func() {
		f := newFixture(1)
		f.surfaces.Put(
			render.Key{MarkerID: "POLOLU_01", Kind: model.KindXY},
			[]byte("<html>chart</html>"),
			time.Now(),
		)

		Convey("When GET /charts/POLOLU_01/xy", func() {
			rec := f.do(http.MethodGet, "/charts/POLOLU_01/xy", "")

			Convey("Then the surface HTML is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(rec.Body.String(), ShouldEqual, "<html>chart</html>")
			})
		})

		Convey("When the pair has not been rendered yet", func() {
			rec := f.do(http.MethodGet, "/charts/POLOLU_01/velocity", "")

			Convey("Then it is a 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the kind is hidden", func() {
			So(f.store.SetVisibility(context.Background(), "POLOLU_01", model.KindXY, false), ShouldBeNil)
			rec := f.do(http.MethodGet, "/charts/POLOLU_01/xy", "")

			Convey("Then the stale surface is not served", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the kind is bogus", func() {
			rec := f.do(http.MethodGet, "/charts/POLOLU_01/pie", "")

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestDashboard(t *testing.T) {
	Convey("Given the operator API", t, func() {
		f := newFixture(0)

		Convey("When GET /dashboard", func() {
			rec := f.do(http.MethodGet, "/dashboard", "")

			Convey("Then the embedded page is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "mocapd")
			})
		})
	})
}

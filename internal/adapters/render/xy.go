package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/robotat/mocapd/internal/domain/model"
)

// XY chart tuning constants.
const (
	xyWindow     = 100
	xyScaleFloor = 2.0 // meters
)

// XYRenderer draws the marker's planar path on axes through the origin,
// auto-scaled to the window with a 2 m floor so a stationary marker does not
// collapse the plot.
type XYRenderer struct{}

// NewXYRenderer creates the planar path renderer.
func NewXYRenderer() *XYRenderer {
	return &XYRenderer{}
}

// Kind identifies the chart this renderer produces.
func (r *XYRenderer) Kind() model.ChartKind {
	return model.KindXY
}

// Render builds the planar path document from the newest history samples.
func (r *XYRenderer) Render(snap Snapshot) ([]byte, error) {
	window := snap.History
	if len(window) > xyWindow {
		window = window[:xyWindow]
	}

	scale := xyScaleFloor
	for i := range window {
		if v := math.Abs(window[i].Position.X); v > scale {
			scale = v
		}
		if v := math.Abs(window[i].Position.Y); v > scale {
			scale = v
		}
	}
	pad := scale * 1.05

	// History is newest-first; the path wants chronological order.
	path := make([]opts.LineData, 0, len(window))
	for i := len(window) - 1; i >= 0; i-- {
		s := window[i]
		path = append(path, opts.LineData{Value: []interface{}{s.Position.X, s.Position.Y}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s XY", snap.MarkerID),
			Theme:     "dark",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s planar path", snap.MarkerID),
			Subtitle: fmt.Sprintf("last %d samples", len(window)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	line.AddSeries("path", path,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#26828e"}),
	)

	if len(window) > 0 {
		newest := window[0]
		head := charts.NewScatter()
		head.AddSeries("newest",
			[]opts.ScatterData{{Value: []interface{}{newest.Position.X, newest.Position.Y}}},
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#fde725"}),
		)
		line.Overlap(head)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering xy chart for %s: %w", snap.MarkerID, err)
	}
	return buf.Bytes(), nil
}

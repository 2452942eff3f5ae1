package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/robotat/mocapd/internal/domain/model"
)

// Velocity chart tuning constants.
const (
	velocityWindow     = 50
	velocityScaleFloor = 1.0 // m/s
)

// VelocityRenderer draws a filled velocity-over-time line from the newest
// trajectory points, with a 1 m/s y-scale floor.
type VelocityRenderer struct{}

// NewVelocityRenderer creates the velocity renderer.
func NewVelocityRenderer() *VelocityRenderer {
	return &VelocityRenderer{}
}

// Kind identifies the chart this renderer produces.
func (r *VelocityRenderer) Kind() model.ChartKind {
	return model.KindVelocity
}

// Render builds the velocity document from the last trajectory points.
func (r *VelocityRenderer) Render(snap Snapshot) ([]byte, error) {
	window := snap.Trajectory
	if len(window) > velocityWindow {
		window = window[len(window)-velocityWindow:]
	}

	maxVel := velocityScaleFloor
	labels := make([]string, 0, len(window))
	data := make([]opts.LineData, 0, len(window))
	for _, p := range window {
		if p.Velocity > maxVel {
			maxVel = p.Velocity
		}
		labels = append(labels, time.UnixMilli(p.Timestamp).Format("15:04:05.000"))
		data = append(data, opts.LineData{Value: p.Velocity})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s velocity", snap.MarkerID),
			Theme:     "dark",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s velocity", snap.MarkerID),
			Subtitle: fmt.Sprintf("last %d points", len(window)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: maxVel * 1.05, Name: "velocity (m/s)", NameLocation: "middle", NameGap: 35}),
	)
	line.SetXAxis(labels).
		AddSeries("velocity", data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#35b779"}),
		)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering velocity chart for %s: %w", snap.MarkerID, err)
	}
	return buf.Bytes(), nil
}

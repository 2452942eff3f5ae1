package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/robotat/mocapd/internal/domain/model"
)

// Height chart tuning constants.
const (
	heightFadeSeconds = 10.0
	heightMinOpacity  = 0.2
	heightMinSymbol   = 6
	heightMaxSymbol   = 20
)

// Viridis ramp, reused for the Z visual map.
var heightRamp = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// HeightRenderer draws discs on the XY plane sized and colored by normalized
// Z. Older samples fade out over ten seconds down to a 0.2 opacity floor; the
// newest sample is outlined.
type HeightRenderer struct{}

// NewHeightRenderer creates the height-coded renderer.
func NewHeightRenderer() *HeightRenderer {
	return &HeightRenderer{}
}

// Kind identifies the chart this renderer produces.
func (r *HeightRenderer) Kind() model.ChartKind {
	return model.KindHeight
}

// Render builds the height-coded document from the full trajectory window.
func (r *HeightRenderer) Render(snap Snapshot) ([]byte, error) {
	window := snap.Trajectory

	scale := xyScaleFloor
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for i := range window {
		p := window[i]
		if v := math.Abs(p.X); v > scale {
			scale = v
		}
		if v := math.Abs(p.Y); v > scale {
			scale = v
		}
		if p.Z < minZ {
			minZ = p.Z
		}
		if p.Z > maxZ {
			maxZ = p.Z
		}
	}
	pad := scale * 1.05
	if len(window) == 0 {
		minZ, maxZ = 0, 1
	}
	span := maxZ - minZ
	if span == 0 {
		span = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s height", snap.MarkerID),
			Theme:     "dark",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s height-coded path", snap.MarkerID),
			Subtitle: fmt.Sprintf("samples=%d z=[%.2f, %.2f] m", len(window), minZ, maxZ),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25, SplitLine: &opts.SplitLine{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30, SplitLine: &opts.SplitLine{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minZ),
			Max:        float32(minZ + span),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: heightRamp},
		}),
	)

	// Bucket by age so each bucket gets one opacity level. go-echarts has no
	// per-point opacity, so the fade is stepped per second of age.
	buckets := make(map[int][]opts.ScatterData)
	for i := range window {
		p := window[i]
		age := snap.Now.Sub(p.Time()).Seconds()
		if age < 0 {
			age = 0
		}
		slot := int(age)
		if slot > int(heightFadeSeconds) {
			slot = int(heightFadeSeconds)
		}

		norm := (p.Z - minZ) / span
		size := heightMinSymbol + int(norm*float64(heightMaxSymbol-heightMinSymbol))
		buckets[slot] = append(buckets[slot], opts.ScatterData{
			Value:      []interface{}{p.X, p.Y, p.Z},
			SymbolSize: size,
		})
	}
	for slot := 0; slot <= int(heightFadeSeconds); slot++ {
		data, ok := buckets[slot]
		if !ok {
			continue
		}
		opacity := 1 - float64(slot)/heightFadeSeconds
		if opacity < heightMinOpacity {
			opacity = heightMinOpacity
		}
		scatter.AddSeries(fmt.Sprintf("age-%ds", slot), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Opacity: opts.Float(float32(opacity))}),
		)
	}

	// Faint connecting polyline; the window is already oldest-first.
	if len(window) > 1 {
		path := make([]opts.LineData, 0, len(window))
		for i := range window {
			p := window[i]
			path = append(path, opts.LineData{Value: []interface{}{p.X, p.Y}})
		}
		line := charts.NewLine()
		line.AddSeries("path", path,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e", Opacity: opts.Float(0.3)}),
		)
		scatter.Overlap(line)
	}

	if len(window) > 0 {
		newest := window[len(window)-1]
		scatter.AddSeries("newest",
			[]opts.ScatterData{{
				Value:      []interface{}{newest.X, newest.Y, newest.Z},
				SymbolSize: heightMaxSymbol + 4,
			}},
			charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: "#ffffff", Opacity: opts.Float(1)}),
		)
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering height chart for %s: %w", snap.MarkerID, err)
	}
	return buf.Bytes(), nil
}

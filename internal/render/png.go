// Package render draws panel series as PNG charts with go-chart.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/ioscope/internal/view"
)

const (
	DefaultWidth  = 900
	DefaultHeight = 500
)

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}}
}

// ScatterPNG draws s as a point cloud. Undefined points are dropped; a
// series with nothing plottable still renders an empty frame.
func ScatterPNG(w io.Writer, s view.ScatterSeries, width, height int) error {
	width, height = size(width, height)
	xs, ys := s.Points()
	title := s.Title
	if len(xs) == 0 {
		title += " (no data)"
		// go-chart rejects empty series; an invisible point keeps the frame.
		xs, ys = []float64{0}, []float64{0}
		st := pointStyle(chart.ColorTransparent)
		st.DotWidth = 0
		return renderScatter(w, title, s, xs, ys, st, width, height)
	}
	return renderScatter(w, title, s, xs, ys, pointStyle(chart.ColorBlue), width, height)
}

func renderScatter(w io.Writer, title string, s view.ScatterSeries, xs, ys []float64, st chart.Style, width, height int) error {
	ch := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: background(),
		XAxis:      chart.XAxis{Name: s.XColumn, Range: paddedRange(xs)},
		YAxis:      chart.YAxis{Name: s.YColumn, Range: paddedRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: s.YColumn, XValues: xs, YValues: ys, Style: st},
		},
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// HistogramPNG draws one bar per bin, labelled with the bin's bounds.
func HistogramPNG(w io.Writer, h view.HistogramSeries, width, height int) error {
	width, height = size(width, height)
	bars := make([]chart.Value, len(h.Bins))
	top := 1.0
	for i, b := range h.Bins {
		bars[i] = chart.Value{Value: float64(b.Count), Label: binLabel(b.Lower, b.Upper)}
		top = math.Max(top, float64(b.Count))
	}
	if len(bars) == 0 {
		bars = []chart.Value{{Value: 0, Label: "empty"}}
	}
	barWidth := max((width-120)/len(bars)-8, 4)
	bc := chart.BarChart{
		Title:      strings.ReplaceAll(h.Title, "\n", " "),
		Width:      width,
		Height:     height,
		Background: background(),
		BarWidth:   barWidth,
		BarSpacing: 8,
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Name:  "count",
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}
	return nil
}

// OutputPNG renders whichever series out carries.
func OutputPNG(w io.Writer, out view.Output, width, height int) error {
	switch {
	case out.Kind == view.Histogram && out.Histogram != nil:
		return HistogramPNG(w, *out.Histogram, width, height)
	case out.Scatter != nil:
		return ScatterPNG(w, *out.Scatter, width, height)
	default:
		return fmt.Errorf("render: empty %s output", out.Kind)
	}
}

func size(width, height int) (int, int) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return width, height
}

// paddedRange widens [min, max] by 5% each side, or by one unit when the
// values are all equal, since go-chart refuses a zero-width range.
func paddedRange(vs []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func binLabel(lo, hi float64) string {
	return fmt.Sprintf("%.4g-%.4g", lo, hi)
}

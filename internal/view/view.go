// Package view turns the shared row table into plot-ready series for the two
// panel kinds: scatter plots and filtered histograms.
package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/ioscope/internal/dataset"
	"github.com/KaramelBytes/ioscope/internal/fuzzy"
	"github.com/KaramelBytes/ioscope/internal/histogram"
)

// ErrUnknownColumn is returned when a column query matches nothing.
var ErrUnknownColumn = errors.New("unknown column")

// Kind is the closed set of panel renderings.
type Kind int

const (
	Scatter Kind = iota
	Histogram
)

func (k Kind) String() string {
	if k == Histogram {
		return "histogram"
	}
	return "scatter"
}

// Label is the human name shown in the kind selector.
func (k Kind) Label() string {
	if k == Histogram {
		return "Histogram Filter"
	}
	return "Data Plotter"
}

// KindOptions feeds the panel-kind selector.
func KindOptions() []fuzzy.Option {
	return []fuzzy.Option{
		{Label: Scatter.Label(), Value: Scatter.String()},
		{Label: Histogram.Label(), Value: Histogram.String()},
	}
}

// ParseKind maps a kind name or label to a Kind. Unknown names fall back to
// Scatter, the default panel.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "histogram", "hist", "histogramfilter":
		return Histogram
	default:
		return Scatter
	}
}

// ColumnSet selects which columns a selector offers.
type ColumnSet int

const (
	AllColumns ColumnSet = iota
	InputColumns
	OutputColumns
)

// ParseColumnSet accepts all|input|output.
func ParseColumnSet(s string) (ColumnSet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllColumns, nil
	case "input", "inputs", "in":
		return InputColumns, nil
	case "output", "outputs", "out":
		return OutputColumns, nil
	default:
		return AllColumns, fmt.Errorf("invalid column kind: %s (use all, input or output)", s)
	}
}

// ColumnOptions lists the table's columns as selector options.
func ColumnOptions(t *dataset.Table, set ColumnSet) []fuzzy.Option {
	switch set {
	case InputColumns:
		return fuzzy.FromLabels(t.InputColumns())
	case OutputColumns:
		return fuzzy.FromLabels(t.OutputColumns())
	default:
		return fuzzy.FromLabels(t.Columns)
	}
}

// ResolveColumn picks the best fuzzy match for query among options.
func ResolveColumn(options []fuzzy.Option, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("%w: empty query", ErrUnknownColumn)
	}
	hits := fuzzy.Match(options, query)
	if len(hits) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, query)
	}
	return fmt.Sprint(hits[0].Value), nil
}

// ScatterSeries is what a scatter plotting surface consumes. X and Y are
// parallel; NaN marks a point whose value is missing or not numeric.
type ScatterSeries struct {
	XColumn string    `json:"x_column"`
	YColumn string    `json:"y_column"`
	Title   string    `json:"title"`
	IDs     []string  `json:"ids"`
	X       []float64 `json:"-"`
	Y       []float64 `json:"-"`
}

// MarshalJSON encodes undefined points as null since JSON has no NaN.
func (s ScatterSeries) MarshalJSON() ([]byte, error) {
	type wire struct {
		XColumn string     `json:"x_column"`
		YColumn string     `json:"y_column"`
		Title   string     `json:"title"`
		IDs     []string   `json:"ids"`
		X       []*float64 `json:"x"`
		Y       []*float64 `json:"y"`
	}
	return json.Marshal(wire{s.XColumn, s.YColumn, s.Title, s.IDs, nullable(s.X), nullable(s.Y)})
}

func nullable(v []float64) []*float64 {
	out := make([]*float64, len(v))
	for i := range v {
		if !math.IsNaN(v[i]) {
			f := v[i]
			out[i] = &f
		}
	}
	return out
}

// ScatterOf projects two columns of t.
func ScatterOf(t *dataset.Table, x, y string) ScatterSeries {
	s := ScatterSeries{
		XColumn: x,
		YColumn: y,
		Title:   fmt.Sprintf("%s vs. %s", y, x),
		IDs:     make([]string, len(t.Rows)),
		X:       make([]float64, len(t.Rows)),
		Y:       make([]float64, len(t.Rows)),
	}
	for i, r := range t.Rows {
		s.IDs[i] = r.ID()
		s.X[i] = floatOrNaN(r, x)
		s.Y[i] = floatOrNaN(r, y)
	}
	return s
}

// Points returns the plottable pairs, dropping undefined ones.
func (s ScatterSeries) Points() (xs, ys []float64) {
	for i := range s.X {
		if math.IsNaN(s.X[i]) || math.IsNaN(s.Y[i]) {
			continue
		}
		xs = append(xs, s.X[i])
		ys = append(ys, s.Y[i])
	}
	return xs, ys
}

func floatOrNaN(r dataset.Row, col string) float64 {
	if f, ok := r.Float(col); ok {
		return f
	}
	return math.NaN()
}

// HistogramSeries is what a histogram plotting surface consumes.
type HistogramSeries struct {
	Spec   histogram.FilterSpec `json:"spec"`
	Title  string               `json:"title"`
	Values []float64            `json:"values"`
	Bins   []histogram.Bin      `json:"bins"`
	// Matched is the number of rows inside the output range.
	Matched int `json:"matched"`
	Skipped int `json:"skipped"`
	// MaxBins bounds the bin-count control for the current filter.
	MaxBins int `json:"max_bins"`
}

// HistogramOf filters and bins t according to spec.
func HistogramOf(t *dataset.Table, spec histogram.FilterSpec) HistogramSeries {
	res := histogram.FilterAndBin(t.Rows, spec)
	spec.BinCount = res.BinCount
	values := res.Values
	if values == nil {
		values = []float64{}
	}
	return HistogramSeries{
		Spec:    spec,
		Title:   spec.Title(),
		Values:  values,
		Bins:    res.Bins,
		Matched: len(res.FilteredRows),
		Skipped: res.Skipped,
		MaxBins: max(len(res.FilteredRows), 1),
	}
}

// Output is the tagged result of rendering a panel: exactly one of Scatter
// or Histogram is set, matching Kind.
type Output struct {
	Kind      Kind
	Scatter   *ScatterSeries
	Histogram *HistogramSeries
}

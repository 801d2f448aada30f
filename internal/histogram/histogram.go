// Package histogram filters rows by an output-column range and bins an input
// column into equal-width buckets.
package histogram

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/ioscope/internal/dataset"
)

// FilterSpec is the configuration one histogram view owns.
type FilterSpec struct {
	InputColumn  string  `json:"input_column"`
	OutputColumn string  `json:"output_column"`
	RangeMin     float64 `json:"range_min"`
	RangeMax     float64 `json:"range_max"`
	BinCount     int     `json:"bin_count"`
}

// Bin is one histogram bucket. Lower is inclusive; Upper is exclusive
// except for the last bucket, which also holds the maximum.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Result is the outcome of FilterAndBin.
type Result struct {
	FilteredRows []dataset.Row
	Bins         []Bin
	// BinCount is the bin count actually used after clamping.
	BinCount int
	// Values holds the numeric input values that were binned, in row order.
	Values []float64
	// Skipped counts filtered rows whose input value is absent or not numeric.
	Skipped int
}

// Filter keeps rows whose output column lies in [lo, hi]. Rows without a
// numeric value there are dropped; lo > hi selects nothing.
func Filter(rows []dataset.Row, outputColumn string, lo, hi float64) []dataset.Row {
	out := []dataset.Row{}
	if lo > hi || math.IsNaN(lo) || math.IsNaN(hi) {
		return out
	}
	for _, r := range rows {
		v, ok := r.Float(outputColumn)
		if ok && lo <= v && v <= hi {
			out = append(out, r)
		}
	}
	return out
}

// ClampBins returns n when it lies in [1, max(rows, 1)] and 1 otherwise.
func ClampBins(n, rows int) int {
	if n < 1 || n > max(rows, 1) {
		return 1
	}
	return n
}

// Bins partitions values into n equal-width buckets spanning their observed
// range. No values yields one empty (0, 0) bucket. When every value is the
// same the buckets are degenerate and all observations land in the first.
func Bins(values []float64, n int) []Bin {
	if n < 1 {
		n = 1
	}
	if len(values) == 0 {
		return []Bin{{}}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	bins := make([]Bin, n)
	if lo == hi {
		for i := range bins {
			bins[i] = Bin{Lower: lo, Upper: hi}
		}
		bins[0].Count = len(sorted)
		return bins
	}

	edges := binEdges(lo, hi, n)
	dividers := append([]float64(nil), edges...)
	// stat.Histogram wants the top divider strictly above the data
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)
	for i := range bins {
		bins[i] = Bin{Lower: edges[i], Upper: edges[i+1], Count: int(counts[i])}
	}
	return bins
}

// binEdges returns n+1 non-decreasing edges from lo to hi.
func binEdges(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	if !math.IsInf(hi-lo, 0) {
		floats.Span(edges, lo, hi)
	} else {
		// hi-lo overflows; interpolate so no intermediate leaves float64 range
		for i := range edges {
			t := float64(i) / float64(n)
			edges[i] = lo*(1-t) + hi*t
		}
	}
	edges[0], edges[n] = lo, hi
	for i := 1; i <= n; i++ {
		edges[i] = math.Max(edges[i], edges[i-1])
	}
	return edges
}

// FilterAndBin filters rows by spec's output range and bins the survivors'
// input column. It has no side effects; equal arguments give equal results.
func FilterAndBin(rows []dataset.Row, spec FilterSpec) Result {
	filtered := Filter(rows, spec.OutputColumn, spec.RangeMin, spec.RangeMax)
	res := Result{FilteredRows: filtered, BinCount: ClampBins(spec.BinCount, len(filtered))}
	for _, r := range filtered {
		if v, ok := r.Float(spec.InputColumn); ok {
			res.Values = append(res.Values, v)
		} else {
			res.Skipped++
		}
	}
	res.Bins = Bins(res.Values, res.BinCount)
	return res
}

// Title summarizes the active filter for a chart heading.
func (s FilterSpec) Title() string {
	return fmt.Sprintf("Histogram of %s\nfiltered by %s between %s and %s",
		s.InputColumn, s.OutputColumn, formatBound(s.RangeMin), formatBound(s.RangeMax))
}

func formatBound(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

package histogram

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ioscope/internal/dataset"
)

func sampleRows() []dataset.Row {
	return []dataset.Row{
		{"id": "a", "x (input)": 1.0, "y (output)": 10.0},
		{"id": "b", "x (input)": 2.0, "y (output)": 20.0},
	}
}

func TestFilterConcreteScenario(t *testing.T) {
	res := FilterAndBin(sampleRows(), FilterSpec{
		InputColumn: "x (input)", OutputColumn: "y (output)",
		RangeMin: 15, RangeMax: 25, BinCount: 1,
	})
	require.Len(t, res.FilteredRows, 1)
	assert.Equal(t, "b", res.FilteredRows[0].ID())
	assert.Equal(t, []Bin{{Lower: 2, Upper: 2, Count: 1}}, res.Bins)
}

func TestFilterBoundsAreInclusive(t *testing.T) {
	got := Filter(sampleRows(), "y (output)", 10, 20)
	assert.Len(t, got, 2)
}

func TestFilterInvertedRangeIsEmpty(t *testing.T) {
	res := FilterAndBin(sampleRows(), FilterSpec{
		InputColumn: "x (input)", OutputColumn: "y (output)",
		RangeMin: 50, RangeMax: 10, BinCount: 10,
	})
	assert.Empty(t, res.FilteredRows)
	assert.NotNil(t, res.FilteredRows)
	require.NotEmpty(t, res.Bins)
	for _, b := range res.Bins {
		assert.Zero(t, b.Count)
	}
	assert.Equal(t, 1, res.BinCount)
}

func TestFilterSkipsMissingAndNonNumeric(t *testing.T) {
	rows := []dataset.Row{
		{"id": "a", "y (output)": 5.0},
		{"id": "b", "y (output)": "7"},
		{"id": "c", "y (output)": "seven"},
		{"id": "d"},
		{"id": "e", "y (output)": nil},
		{"id": "f", "y (output)": true},
	}
	got := Filter(rows, "y (output)", 0, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID())
	assert.Equal(t, "b", got[1].ID())
}

func TestWideningRangeNeverShrinks(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	rows := make([]dataset.Row, 200)
	for i := range rows {
		rows[i] = dataset.Row{"id": string(rune('a' + i%26)), "y (output)": r.Float64()*200 - 100}
	}
	for i := 0; i < 100; i++ {
		lo := r.Float64()*200 - 100
		hi := lo + r.Float64()*50
		narrow := len(Filter(rows, "y (output)", lo, hi))
		wide := len(Filter(rows, "y (output)", lo-r.Float64()*10, hi+r.Float64()*10))
		if wide < narrow {
			t.Fatalf("widening [%f,%f] shrank %d -> %d", lo, hi, narrow, wide)
		}
	}
}

func TestBinCountsSumToFilteredRows(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	rows := make([]dataset.Row, 97)
	for i := range rows {
		rows[i] = dataset.Row{"x (input)": r.NormFloat64() * 3, "y (output)": float64(i)}
	}
	for bins := 1; bins <= 97; bins += 8 {
		res := FilterAndBin(rows, FilterSpec{
			InputColumn: "x (input)", OutputColumn: "y (output)",
			RangeMin: 0, RangeMax: 1000, BinCount: bins,
		})
		require.Len(t, res.Bins, bins)
		total := 0
		for i, b := range res.Bins {
			total += b.Count
			if i > 0 {
				assert.Equal(t, res.Bins[i-1].Upper, b.Lower, "bins are contiguous")
			}
		}
		assert.Equal(t, len(res.FilteredRows), total)
		assert.Equal(t, minOf(res.Values), res.Bins[0].Lower)
		assert.Equal(t, maxOf(res.Values), res.Bins[bins-1].Upper)
	}
}

func TestBinsUseFilteredRange(t *testing.T) {
	rows := []dataset.Row{
		{"x (input)": 0.0, "y (output)": 1.0},
		{"x (input)": 10.0, "y (output)": 5.0},
		{"x (input)": 20.0, "y (output)": 5.0},
		{"x (input)": 1000.0, "y (output)": 99.0},
	}
	res := FilterAndBin(rows, FilterSpec{InputColumn: "x (input)", OutputColumn: "y (output)", RangeMin: 2, RangeMax: 6, BinCount: 2})
	assert.Equal(t, []Bin{{10, 15, 1}, {15, 20, 1}}, res.Bins)
}

func TestBinsPlaceMaxInLastBucket(t *testing.T) {
	got := Bins([]float64{0, 5, 10}, 2)
	assert.Equal(t, []Bin{{0, 5, 1}, {5, 10, 2}}, got)
}

func TestBinsEqualValues(t *testing.T) {
	got := Bins([]float64{3, 3, 3}, 3)
	assert.Equal(t, []Bin{{3, 3, 3}, {3, 3, 0}, {3, 3, 0}}, got)
}

func TestBinsEmpty(t *testing.T) {
	assert.Equal(t, []Bin{{}}, Bins(nil, 4))
}

func TestClampBins(t *testing.T) {
	assert.Equal(t, 1, ClampBins(0, 10))
	assert.Equal(t, 1, ClampBins(-3, 10))
	assert.Equal(t, 1, ClampBins(11, 10))
	assert.Equal(t, 10, ClampBins(10, 10))
	assert.Equal(t, 1, ClampBins(5, 0))
	assert.Equal(t, 1, ClampBins(1, 0))
}

func TestFilterAndBinClampsOversizedBinCount(t *testing.T) {
	res := FilterAndBin(sampleRows(), FilterSpec{InputColumn: "x (input)", OutputColumn: "y (output)", RangeMin: 0, RangeMax: 100, BinCount: 50})
	assert.Equal(t, 1, res.BinCount)
	assert.Equal(t, []Bin{{1, 2, 2}}, res.Bins)
}

func TestFilterAndBinCountsSkippedInputs(t *testing.T) {
	rows := append(sampleRows(), dataset.Row{"id": "c", "x (input)": "n/a", "y (output)": 15.0})
	res := FilterAndBin(rows, FilterSpec{InputColumn: "x (input)", OutputColumn: "y (output)", RangeMin: 0, RangeMax: 100, BinCount: 2})
	assert.Equal(t, 1, res.Skipped)
	total := res.Skipped
	for _, b := range res.Bins {
		total += b.Count
	}
	assert.Equal(t, len(res.FilteredRows), total)
}

func TestFilterAndBinIsIdempotent(t *testing.T) {
	spec := FilterSpec{InputColumn: "x (input)", OutputColumn: "y (output)", RangeMin: 0, RangeMax: 30, BinCount: 2}
	rows := sampleRows()
	assert.Equal(t, FilterAndBin(rows, spec), FilterAndBin(rows, spec))
	assert.Equal(t, sampleRows(), rows, "input rows are untouched")
}

func TestTitle(t *testing.T) {
	spec := FilterSpec{InputColumn: "x (input)", OutputColumn: "y (output)", RangeMin: 0, RangeMax: 100000}
	assert.Equal(t, "Histogram of x (input)\nfiltered by y (output) between 0 and 100000", spec.Title())
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}

func TestBinsHugeRange(t *testing.T) {
	bins := Bins([]float64{-1e308, 0, 1e308}, 3)
	require.Len(t, bins, 3)
	assert.Equal(t, -1e308, bins[0].Lower)
	assert.Equal(t, 1e308, bins[2].Upper)
	for i, b := range bins {
		assert.Equal(t, 1, b.Count, "bin %d", i)
		assert.False(t, math.IsInf(b.Lower, 0) || math.IsInf(b.Upper, 0), "bin %d has infinite edge", i)
		if i > 0 {
			assert.Equal(t, bins[i-1].Upper, b.Lower)
		}
	}

	rows := []dataset.Row{
		{"id": "a", "x (input)": -math.MaxFloat64, "y (output)": 1.0},
		{"id": "b", "x (input)": math.MaxFloat64, "y (output)": 1.0},
	}
	res := FilterAndBin(rows, FilterSpec{InputColumn: "x (input)", OutputColumn: "y (output)", RangeMin: 0, RangeMax: 2, BinCount: 2})
	require.Len(t, res.Bins, 2)
	assert.Equal(t, 1, res.Bins[0].Count)
	assert.Equal(t, 1, res.Bins[1].Count)
}

package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ioscope/internal/keymap"
	"github.com/KaramelBytes/ioscope/internal/render"
	"github.com/KaramelBytes/ioscope/internal/utils"
	"github.com/KaramelBytes/ioscope/internal/view"
)

var (
	hsInput  string
	hsOutput string
	hsMin    float64
	hsMax    float64
	hsBins   int
	hsPNG    string
	hsJSON   bool
)

var histogramCmd = &cobra.Command{
	Use:   "histogram <dataset>",
	Short: "Bin an input column over rows whose output lies in a range",
	Long: `Keep the rows whose --output value lies in [--min, --max] (inclusive), then bin
their --input values into --bins equal-width buckets. A bin count larger than
the number of kept rows falls back to a single bin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		p := view.NewPanel(keymap.Left, view.Histogram, panelDefaults())
		f := cmd.Flags()
		if f.Changed("min") {
			p.Filter.RangeMin = hsMin
		}
		if f.Changed("max") {
			p.Filter.RangeMax = hsMax
		}
		for _, b := range []struct {
			flag string
			v    float64
		}{{"min", p.Filter.RangeMin}, {"max", p.Filter.RangeMax}} {
			if math.IsNaN(b.v) || math.IsInf(b.v, 0) {
				return fmt.Errorf("--%s must be a finite number, got %g", b.flag, b.v)
			}
		}
		if f.Changed("bins") {
			p.Filter.BinCount = hsBins
		}
		if err := selectColumns(t, p,
			columnQuery{keymap.FieldInput, "input", hsInput},
			columnQuery{keymap.FieldOutput, "output", hsOutput},
		); err != nil {
			return err
		}
		h := p.Render(t).Histogram
		if f.Changed("bins") && h.Spec.BinCount != hsBins {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ --bins %d is outside [1, %d]; using %d\n", hsBins, h.MaxBins, h.Spec.BinCount)
		}
		out := cmd.OutOrStdout()
		switch {
		case hsPNG != "":
			c := settings()
			if err := utils.WriteWith(hsPNG, func(w io.Writer) error {
				return render.HistogramPNG(w, *h, c.ChartWidth, c.ChartHeight)
			}); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote histogram to %s\n", hsPNG)
		case hsJSON:
			b, err := utils.PrettyJSON(h)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		default:
			writeHistogramTable(out, h)
		}
		return nil
	},
}

func writeHistogramTable(w io.Writer, h *view.HistogramSeries) {
	fmt.Fprintln(w, h.Title)
	fmt.Fprintf(w, "%d rows matched", h.Matched)
	if h.Skipped > 0 {
		fmt.Fprintf(w, ", %d without a numeric input", h.Skipped)
	}
	fmt.Fprint(w, "\n\n")
	peak := 0
	for _, b := range h.Bins {
		peak = max(peak, b.Count)
	}
	for _, b := range h.Bins {
		bar := 0
		if peak > 0 {
			bar = b.Count * 40 / peak
		}
		fmt.Fprintf(w, "[%-10.4g, %10.4g] %5d %s\n", b.Lower, b.Upper, b.Count, strings.Repeat("#", bar))
	}
}

func init() {
	rootCmd.AddCommand(histogramCmd)
	histogramCmd.Flags().StringVar(&hsInput, "input", "", "input column query (the binned values)")
	histogramCmd.Flags().StringVar(&hsOutput, "output", "", "output column query (the filter)")
	histogramCmd.Flags().Float64Var(&hsMin, "min", 0, "lower output bound, inclusive (default from config)")
	histogramCmd.Flags().Float64Var(&hsMax, "max", 100000, "upper output bound, inclusive (default from config)")
	histogramCmd.Flags().IntVarP(&hsBins, "bins", "b", 10, "number of bins (default from config)")
	histogramCmd.Flags().StringVar(&hsPNG, "png", "", "write the histogram as a PNG to this path")
	histogramCmd.Flags().BoolVar(&hsJSON, "json", false, "print the histogram as JSON")
	_ = histogramCmd.MarkFlagRequired("input")
	_ = histogramCmd.MarkFlagRequired("output")
}

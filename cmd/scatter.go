package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ioscope/internal/keymap"
	"github.com/KaramelBytes/ioscope/internal/render"
	"github.com/KaramelBytes/ioscope/internal/utils"
	"github.com/KaramelBytes/ioscope/internal/view"
)

var (
	scX    string
	scY    string
	scPNG  string
	scJSON bool
)

var scatterCmd = &cobra.Command{
	Use:   "scatter <dataset>",
	Short: "Plot one column against another",
	Long: `Plot one column against another. --x and --y are fuzzy queries resolved to the
best matching column. Rows where either value is missing or not numeric are
left out of the plot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		p := view.NewPanel(keymap.Left, view.Scatter, panelDefaults())
		if err := selectColumns(t, p,
			columnQuery{keymap.FieldInput, "x", scX},
			columnQuery{keymap.FieldOutput, "y", scY},
		); err != nil {
			return err
		}
		s := p.Render(t).Scatter
		out := cmd.OutOrStdout()
		switch {
		case scPNG != "":
			c := settings()
			if err := utils.WriteWith(scPNG, func(w io.Writer) error {
				return render.ScatterPNG(w, *s, c.ChartWidth, c.ChartHeight)
			}); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote scatter plot to %s\n", scPNG)
		case scJSON:
			b, err := utils.PrettyJSON(s)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		default:
			writeScatterTable(out, s)
		}
		return nil
	},
}

func writeScatterTable(w io.Writer, s *view.ScatterSeries) {
	xs, _ := s.Points()
	fmt.Fprintf(w, "%s\n", s.Title)
	fmt.Fprintf(w, "%d of %d rows plotted\n\n", len(xs), len(s.IDs))
	fmt.Fprintf(w, "| id | %s | %s |\n|---|---:|---:|\n", s.XColumn, s.YColumn)
	for i, id := range s.IDs {
		if math.IsNaN(s.X[i]) || math.IsNaN(s.Y[i]) {
			continue
		}
		fmt.Fprintf(w, "| %s | %g | %g |\n", id, s.X[i], s.Y[i])
	}
}

func init() {
	rootCmd.AddCommand(scatterCmd)
	scatterCmd.Flags().StringVarP(&scX, "x", "x", "", "column query for the X axis")
	scatterCmd.Flags().StringVarP(&scY, "y", "y", "", "column query for the Y axis")
	scatterCmd.Flags().StringVar(&scPNG, "png", "", "write the plot as a PNG to this path")
	scatterCmd.Flags().BoolVar(&scJSON, "json", false, "print the series as JSON")
	_ = scatterCmd.MarkFlagRequired("x")
	_ = scatterCmd.MarkFlagRequired("y")
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ioscope/internal/fuzzy"
	"github.com/KaramelBytes/ioscope/internal/view"
)

var (
	matchKind      string
	matchThreshold float64
	matchLimit     int
)

var matchCmd = &cobra.Command{
	Use:   "match <dataset> <query...>",
	Short: "Fuzzy-rank columns against a query",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := view.ParseColumnSet(matchKind)
		if err != nil {
			return err
		}
		opt := matchOptions()
		if cmd.Flags().Changed("threshold") {
			if matchThreshold < 0 || matchThreshold > 1 {
				return fmt.Errorf("--threshold must be within [0,1], got %g", matchThreshold)
			}
			opt.MaxErrorRatio = matchThreshold
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		query := strings.Join(args[1:], " ")
		hits := fuzzy.MatchWith(view.ColumnOptions(t, set), query, opt)
		out := cmd.OutOrStdout()
		if len(hits) == 0 {
			fmt.Fprintf(out, "No columns match %q\n", query)
			return nil
		}
		if matchLimit > 0 && len(hits) > matchLimit {
			hits = hits[:matchLimit]
		}
		for i, h := range hits {
			fmt.Fprintf(out, "%2d. %s\n", i+1, h.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringVarP(&matchKind, "kind", "k", "all", "which columns: all | input | output")
	matchCmd.Flags().Float64Var(&matchThreshold, "threshold", 0.4, "max typo ratio per query token (overrides config)")
	matchCmd.Flags().IntVarP(&matchLimit, "limit", "n", 0, "show at most N matches (0 = all)")
}

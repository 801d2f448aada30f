package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ioscope/internal/utils"
	"github.com/KaramelBytes/ioscope/internal/view"
)

var (
	colKind string
	colJSON bool
)

var columnsCmd = &cobra.Command{
	Use:   "columns <dataset>",
	Short: "List the columns of the reshaped table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := view.ParseColumnSet(colKind)
		if err != nil {
			return err
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		opts := view.ColumnOptions(t, set)
		out := cmd.OutOrStdout()
		if colJSON {
			b, err := utils.PrettyJSON(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "%s: %d rows, %d columns\n", t.Name, t.Len(), len(opts))
		for _, o := range opts {
			fmt.Fprintf(out, "  %s\n", o.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.Flags().StringVarP(&colKind, "kind", "k", "all", "which columns: all | input | output")
	columnsCmd.Flags().BoolVar(&colJSON, "json", false, "print selector options as JSON")
}

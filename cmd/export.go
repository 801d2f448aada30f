package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ioscope/internal/dataset"
	"github.com/KaramelBytes/ioscope/internal/utils"
)

var exportOutputPath string

var exportCmd = &cobra.Command{
	Use:   "export <dataset>",
	Short: "Write the reshaped table as CSV, XLSX or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		switch strings.ToLower(filepath.Ext(exportOutputPath)) {
		case ".csv":
			err = utils.WriteWith(exportOutputPath, func(w io.Writer) error { return dataset.WriteCSV(w, t) })
		case ".xlsx":
			err = dataset.WriteXLSX(exportOutputPath, t)
		case ".json":
			var b []byte
			if b, err = utils.PrettyJSON(t.Rows); err == nil {
				err = utils.SafeWriteFile(exportOutputPath, b)
			}
		default:
			return fmt.Errorf("unsupported --output extension %q (use .csv, .xlsx or .json)", filepath.Ext(exportOutputPath))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d rows x %d columns to %s\n", t.Len(), len(t.Columns), exportOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "destination file (.csv, .xlsx or .json)")
	_ = exportCmd.MarkFlagRequired("output")
}

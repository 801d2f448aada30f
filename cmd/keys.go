package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ioscope/internal/keymap"
	"github.com/KaramelBytes/ioscope/internal/view"
)

var (
	keysLeft  string
	keysRight string
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show the focus chords for the left and right panels",
	RunE: func(cmd *cobra.Command, args []string) error {
		router := keymap.NewRouter()
		panels := []*view.Panel{
			view.NewPanel(keymap.Left, view.ParseKind(keysLeft), panelDefaults()),
			view.NewPanel(keymap.Right, view.ParseKind(keysRight), panelDefaults()),
		}
		byID := map[string]*view.Panel{}
		for _, p := range panels {
			if err := p.Bind(router); err != nil {
				return err
			}
			byID[p.ID] = p
		}
		out := cmd.OutOrStdout()
		for _, b := range router.Bindings() {
			p := byID[b.Target.Panel]
			fmt.Fprintf(out, "%-6s %-17s %-7s %s\n", p.Position, p.Kind.Label(), b.Target.Field, b.Keys)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.Flags().StringVar(&keysLeft, "left", "scatter", "left panel kind: scatter | histogram")
	keysCmd.Flags().StringVar(&keysRight, "right", "histogram", "right panel kind: scatter | histogram")
}

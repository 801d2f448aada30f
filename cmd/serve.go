package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ioscope/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <dataset>",
	Short: "Serve the dataset over a JSON and PNG HTTP API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		c := settings()
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(t, server.Options{
			Defaults:    panelDefaults(),
			Match:       matchOptions(),
			CacheSize:   c.MatchCacheSize,
			CacheTTL:    c.MatchCacheTTL(),
			ChartWidth:  c.ChartWidth,
			ChartHeight: c.ChartHeight,
		}, logger())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s (%d rows) on http://%s\n", t.Name, t.Len(), addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ioscope/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ioscope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "default_bins: %d\n", c.DefaultBins)
		fmt.Fprintf(out, "default_range_min: %g\n", c.DefaultRangeMin)
		fmt.Fprintf(out, "default_range_max: %g\n", c.DefaultRangeMax)
		fmt.Fprintf(out, "match_threshold: %.3f\n", c.MatchThreshold)
		fmt.Fprintf(out, "match_cache_size: %d\n", c.MatchCacheSize)
		fmt.Fprintf(out, "match_cache_ttl_sec: %d\n", c.MatchCacheTTLSec)
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", c.ChartHeight)
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "default_bins":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for default_bins: %v (must be >= 1)", val)
			}
			cfg.DefaultBins = i
		case "default_range_min", "default_range_max":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			if key == "default_range_min" {
				cfg.DefaultRangeMin = f
			} else {
				cfg.DefaultRangeMax = f
			}
		case "match_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > 1 {
				return fmt.Errorf("invalid float for match_threshold: %v (use 0..1)", val)
			}
			cfg.MatchThreshold = f
		case "match_cache_size", "match_cache_ttl_sec", "chart_width", "chart_height":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "match_cache_size":
				cfg.MatchCacheSize = i
			case "match_cache_ttl_sec":
				cfg.MatchCacheTTLSec = i
			case "chart_width":
				cfg.ChartWidth = i
			default:
				cfg.ChartHeight = i
			}
		case "listen_addr":
			cfg.ListenAddr = val
		case "log_level":
			if _, err := logrus.ParseLevel(val); err != nil {
				return fmt.Errorf("invalid log_level: %s", val)
			}
			cfg.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

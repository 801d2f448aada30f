package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Histogram panel defaults
	DefaultBins     int     `mapstructure:"default_bins" yaml:"default_bins"`
	DefaultRangeMin float64 `mapstructure:"default_range_min" yaml:"default_range_min"`
	DefaultRangeMax float64 `mapstructure:"default_range_max" yaml:"default_range_max"`

	// Column matching
	MatchThreshold   float64 `mapstructure:"match_threshold" yaml:"match_threshold"`
	MatchCacheSize   int     `mapstructure:"match_cache_size" yaml:"match_cache_size"`
	MatchCacheTTLSec int     `mapstructure:"match_cache_ttl_sec" yaml:"match_cache_ttl_sec"`

	// PNG output
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`

	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
}

// MatchCacheTTL is MatchCacheTTLSec as a duration.
func (c *Global) MatchCacheTTL() time.Duration {
	return time.Duration(c.MatchCacheTTLSec) * time.Second
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ioscope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ioscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_bins", 10)
	v.SetDefault("default_range_min", 0.0)
	v.SetDefault("default_range_max", 100000.0)
	v.SetDefault("match_threshold", 0.4)
	v.SetDefault("match_cache_size", 256)
	v.SetDefault("match_cache_ttl_sec", 300)
	v.SetDefault("chart_width", 900)
	v.SetDefault("chart_height", 500)
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("log_level", "info")
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("IOSCOPE")
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the panels cannot work with.
func (c *Global) Validate() error {
	if c.DefaultBins < 1 {
		return fmt.Errorf("default_bins must be >= 1, got %d", c.DefaultBins)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be within [0,1], got %g", c.MatchThreshold)
	}
	if c.MatchCacheSize < 0 {
		return fmt.Errorf("match_cache_size must be >= 0, got %d", c.MatchCacheSize)
	}
	return nil
}

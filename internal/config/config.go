// Package config loads blockboot settings from flags, environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sartorproj/blockbootstrap/bootstrap"
)

// EnvPrefix is prepended to every environment variable, e.g. BLOCKBOOT_BLOCK_LENGTH.
const EnvPrefix = "BLOCKBOOT"

// Config aggregates all settings for a blockboot run.
type Config struct {
	// Input is the CSV file to resample. A .zst suffix means zstd framing.
	Input string `mapstructure:"input"`
	// OutputDir receives one CSV file per replicate.
	OutputDir string `mapstructure:"output_dir"`
	// ValueColumns restricts loading to these columns; empty means all.
	ValueColumns []string `mapstructure:"value_columns"`
	// DateColumn names the timestamp column; empty means auto-detect.
	DateColumn string `mapstructure:"date_column"`
	// DateFormat is the preferred timestamp layout.
	DateFormat string `mapstructure:"date_format"`
	// BlockLength is the number of Freq units per block.
	BlockLength int `mapstructure:"block_length"`
	// Freq is the frequency code (D, H, min, S).
	Freq string `mapstructure:"freq"`
	// Replicates is the number of bootstrap samples to write.
	Replicates int `mapstructure:"replicates"`
	// Seed seeds replicate i with Seed+i when Seeded is true.
	Seed   uint64 `mapstructure:"seed"`
	Seeded bool   `mapstructure:"-"`
	// LegacyReseed re-seeds before every block draw.
	LegacyReseed bool `mapstructure:"legacy_reseed"`
	// Compress writes replicates as .csv.zst.
	Compress bool `mapstructure:"compress"`
	// MetricsFile, when set, receives sampler metrics in Prometheus text format.
	MetricsFile string `mapstructure:"metrics_file"`
	// LogLevel sets the logging verbosity.
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log_format"`
}

// Unit returns the parsed frequency unit.
func (c *Config) Unit() (bootstrap.Unit, error) {
	return bootstrap.ParseUnit(c.Freq)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "replicates")
	v.SetDefault("date_format", "2006-01-02")
	v.SetDefault("block_length", bootstrap.DefaultBlockLength)
	v.SetDefault("freq", bootstrap.DefaultUnit.String())
	v.SetDefault("replicates", 1)
	v.SetDefault("legacy_reseed", false)
	v.SetDefault("compress", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// NewFlagSet declares the command line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file (default ./blockboot.yaml if present)")
	fs.StringP("input", "i", "", "input CSV file (.csv or .csv.zst)")
	fs.StringP("output-dir", "o", "replicates", "directory for replicate CSV files")
	fs.StringSlice("columns", nil, "value columns to load (default: all non-date columns)")
	fs.String("date-column", "", "timestamp column (default: auto-detect)")
	fs.String("date-format", "2006-01-02", "preferred timestamp layout")
	fs.IntP("block-length", "b", bootstrap.DefaultBlockLength, "block length in frequency units")
	fs.StringP("freq", "f", bootstrap.DefaultUnit.String(), "frequency unit: D, H, min or S")
	fs.IntP("replicates", "n", 1, "number of bootstrap samples")
	fs.Uint64P("seed", "s", 0, "seed replicate i with seed+i")
	fs.Bool("legacy-reseed", false, "re-seed before every block draw")
	fs.Bool("compress", false, "write replicates as .csv.zst")
	fs.String("metrics-file", "", "write sampler metrics to this file")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "text", "log format: text or json")
	return fs
}

var flagKeys = map[string]string{
	"input":         "input",
	"output-dir":    "output_dir",
	"columns":       "value_columns",
	"date-column":   "date_column",
	"date-format":   "date_format",
	"block-length":  "block_length",
	"freq":          "freq",
	"replicates":    "replicates",
	"seed":          "seed",
	"legacy-reseed": "legacy_reseed",
	"compress":      "compress",
	"metrics-file":  "metrics_file",
	"log-level":     "log_level",
	"log-format":    "log_format",
}

// Load parses args and merges them over environment, config file and
// defaults, in that order of precedence.
func Load(args []string) (*Config, error) {
	fs := NewFlagSet("blockboot")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blockboot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Seeded = v.IsSet("seed")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input file is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.Replicates < 1 {
		return fmt.Errorf("replicates must be at least 1, got %d", c.Replicates)
	}
	if c.BlockLength < 1 {
		return fmt.Errorf("%w: block length must be at least 1, got %d", bootstrap.ErrConfiguration, c.BlockLength)
	}
	if _, err := c.Unit(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

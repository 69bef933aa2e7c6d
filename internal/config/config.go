// Package config loads apkcat settings from defaults, an optional YAML file,
// and APKCAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config holds settings passed explicitly into the archive opener and the
// command output.
type Config struct {
	LogLevel         string `mapstructure:"log_level"`
	LogFormat        string `mapstructure:"log_format"`
	MaxFileSize      uint64 `mapstructure:"max_file_size"`
	MaxArchiveSize   uint64 `mapstructure:"max_archive_size"`
	MaxDecoderMemory uint64 `mapstructure:"max_decoder_memory"`
	Workers          int    `mapstructure:"workers"`
	Progress         bool   `mapstructure:"progress"`
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Load reads configuration. cfgFile may be empty, in which case apkcat.yaml
// is looked up in the home and working directories; a missing file is not
// an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_file_size", 256<<20)
	v.SetDefault("max_archive_size", 2<<30)
	v.SetDefault("max_decoder_memory", 256<<20)
	v.SetDefault("workers", 4)
	v.SetDefault("progress", true)

	v.SetEnvPrefix("APKCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName("apkcat")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values.
func (c *Config) Validate() error {
	if !slices.Contains(validLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q (want one of %s)", c.LogLevel, strings.Join(validLevels, ", "))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (want text or json)", c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

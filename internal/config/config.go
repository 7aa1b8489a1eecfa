// Package config loads exmap settings from .exmap/config.yml with
// EXMAP_* environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full on-disk configuration. Command-line flags override
// whatever is loaded here.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Dot      DotConfig      `mapstructure:"dot"`
}

// AnalysisConfig sets run defaults for the analyze pipeline.
// InternalOnly is a pointer so that an unset key can be told apart from an
// explicit false: commands carry different flag defaults, and only an
// actually-configured value may override them.
type AnalysisConfig struct {
	IncludeTests bool  `mapstructure:"include_tests"`
	InternalOnly *bool `mapstructure:"internal_only"`
	Workers      int   `mapstructure:"workers"` // 0 = NumCPU
}

// ScanConfig tunes file discovery.
type ScanConfig struct {
	Exclude []string `mapstructure:"exclude"` // doublestar globs, relative to root
}

// DotConfig sets render defaults for the dot command.
type DotConfig struct {
	Prune []string `mapstructure:"prune"` // qualified module names, exact match
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			IncludeTests: false,
		},
	}
}

// Load reads configuration for a project root. Priority, lowest to highest:
// defaults, .exmap/config.yml (or .yaml), EXMAP_* environment variables.
// A missing config file is not an error.
func Load(root string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(root, ".exmap"))

	v.SetEnvPrefix("EXMAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.BindEnv("analysis.include_tests")
	v.BindEnv("analysis.internal_only")
	v.BindEnv("analysis.workers")

	v.SetDefault("analysis.include_tests", false)
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("dot.prune", []string{})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Analysis.Workers < 0 {
		return nil, fmt.Errorf("analysis.workers must be >= 0, got %d", cfg.Analysis.Workers)
	}
	return cfg, nil
}

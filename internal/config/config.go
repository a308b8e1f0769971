// Package config handles exporter configuration loading and management.
package config

import "time"

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds settings for one export pass.
type ExportConfig struct {
	Output        string `yaml:"output"`         // Output path; empty derives <stem>.rscn next to the scene
	Workers       int    `yaml:"workers"`        // Parallel mesh builders; 0 uses GOMAXPROCS
	StrictNames   bool   `yaml:"strict_names"`   // Fail on non-ASCII names instead of folding them
	SkipOversized bool   `yaml:"skip_oversized"` // Skip meshes over the 16-bit index limit instead of failing
	Generator     string `yaml:"generator"`      // Overrides the "# <generator>" comment line
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Workers: 0,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Package config loads galton's ambient settings from YAML and the environment.
// The simulation parameters themselves are constants and cannot be configured.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/galton/internal/constants"
	"gopkg.in/yaml.v3"
)

// GaltonConfig contains all galton configuration settings.
type GaltonConfig struct {
	// Logging contains settings for progress and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Index contains settings for the SQLite run index.
	Index IndexConfig `json:"index" yaml:"index"`

	// Plot contains settings for rendered PNG plots.
	Plot PlotConfig `json:"plot" yaml:"plot"`
}

// LoggingConfig configures galton's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the checkpoint trace in out/checkpoints.jsonl.
	// "trace" additionally includes every histogram in that trace.
	Level string `json:"level" yaml:"level"`
}

// IndexConfig configures the run index.
type IndexConfig struct {
	// Enabled records run and checkpoint metrics in out/galton.db.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// PlotConfig configures rendered plots.
type PlotConfig struct {
	// WidthCM is the image width in centimetres.
	WidthCM float64 `json:"width_cm" yaml:"width_cm"`

	// HeightCM is the image height in centimetres. 0 derives it from the width.
	HeightCM float64 `json:"height_cm" yaml:"height_cm"`
}

// Default returns a GaltonConfig with sensible defaults.
func Default() *GaltonConfig {
	return &GaltonConfig{
		Logging: LoggingConfig{
			Level: "info",
		},
		Index: IndexConfig{
			Enabled: true,
		},
		Plot: PlotConfig{
			WidthCM:  16,
			HeightCM: 0,
		},
	}
}

// DefaultPath returns ~/.galton/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.ConfigDirName, "config.yaml"), nil
}

// Load loads configuration from the default location and environment variables.
// Order: defaults -> ~/.galton/config.yaml -> environment variables
func Load() (*GaltonConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*GaltonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// SaveToFile writes c as YAML to path, creating the parent directory.
func (c *GaltonConfig) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *GaltonConfig) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Plot.WidthCM <= 0 {
		return fmt.Errorf("plot.width_cm must be positive, got %g", c.Plot.WidthCM)
	}
	if c.Plot.HeightCM < 0 {
		return fmt.Errorf("plot.height_cm must be non-negative, got %g", c.Plot.HeightCM)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *GaltonConfig) {
	if v := os.Getenv("GALTON_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("GALTON_INDEX_ENABLED"); v != "" {
		config.Index.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("GALTON_PLOT_WIDTH_CM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Plot.WidthCM = f
		}
	}
}

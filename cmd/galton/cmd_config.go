package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nvandessel/galton/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage galton configuration",
		Long: `View and modify galton configuration settings.

Configuration is stored in ~/.galton/config.yaml. The simulation itself
(heights, ball count, seed) is fixed and cannot be configured.

Examples:
  galton config list                  # Show all settings
  galton config get logging.level     # Get a specific setting
  galton config set plot.width_cm 24  # Set a setting`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)
	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(w).Encode(cfg)
			}
			fmt.Fprintln(w, "Configuration (~/.galton/config.yaml):")
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  logging.level:   %s\n", cfg.Logging.Level)
			fmt.Fprintf(w, "  index.enabled:   %v\n", cfg.Index.Enabled)
			fmt.Fprintf(w, "  plot.width_cm:   %g\n", cfg.Plot.WidthCM)
			if cfg.Plot.HeightCM > 0 {
				fmt.Fprintf(w, "  plot.height_cm:  %g\n", cfg.Plot.HeightCM)
			} else {
				fmt.Fprintf(w, "  plot.height_cm:  (from width)\n")
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"key":   key,
					"value": value,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			path, err := config.DefaultPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveToFile(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			}
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.GaltonConfig, key string) (any, bool) {
	switch key {
	case "logging.level":
		return cfg.Logging.Level, true
	case "index.enabled":
		return cfg.Index.Enabled, true
	case "plot.width_cm":
		return cfg.Plot.WidthCM, true
	case "plot.height_cm":
		return cfg.Plot.HeightCM, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.GaltonConfig, key, value string) error {
	switch key {
	case "logging.level":
		cfg.Logging.Level = value
	case "index.enabled":
		cfg.Index.Enabled = value == "true" || value == "1"
	case "plot.width_cm", "plot.height_cm":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %s", key, value)
		}
		if key == "plot.width_cm" {
			cfg.Plot.WidthCM = f
		} else {
			cfg.Plot.HeightCM = f
		}
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/nvandessel/galton/internal/config"
	"github.com/nvandessel/galton/internal/constants"
	"github.com/nvandessel/galton/internal/pathutil"
	"github.com/nvandessel/galton/internal/plot"
	"github.com/spf13/cobra"
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a checkpoint as a PNG",
		Long: `Render the histogram of one checkpoint with the scaled normal curve
overlaid. The image is written to <root>/out/plot_h<H>_b<I>.png unless
--output is given; --output must stay inside the project root.

Examples:
  galton plot --height 50 --trials 1000
  galton plot --height 1000 --trials 1000000 --output h1000.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			height, _ := cmd.Flags().GetInt("height")
			trials, _ := cmd.Flags().GetInt64("trials")
			output, _ := cmd.Flags().GetString("output")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			outDir := filepath.Join(root, constants.OutputDirName)
			if output == "" {
				output = filepath.Join(outDir, plot.DefaultName(height, trials))
			} else if err := pathutil.ValidateOutputPath(output, root); err != nil {
				return err
			}
			opts := plot.Options{WidthCM: cfg.Plot.WidthCM, HeightCM: cfg.Plot.HeightCM}
			if err := plot.Render(outDir, height, trials, output, opts); err != nil {
				return fmt.Errorf("failed to render plot: %w", err)
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"status": "rendered",
					"height": height,
					"trials": trials,
					"path":   output,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().Int("height", 0, "Board height")
	cmd.Flags().Int64("trials", 0, "Checkpoint ball count (10, 100, ... 1000000)")
	cmd.Flags().String("output", "", "Output image path")
	cmd.MarkFlagRequired("height")
	cmd.MarkFlagRequired("trials")
	return cmd
}

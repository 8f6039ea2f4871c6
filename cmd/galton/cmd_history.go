package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/galton/internal/constants"
	"github.com/nvandessel/galton/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show checkpoint metrics of the latest run",
		Long: `Show the metrics recorded in <root>/out/galton.db for every checkpoint
of the most recent run: maximum deviation from the binomial expectation,
binomial/normal mean squared error, and a chi-square goodness-of-fit test.

Examples:
  galton history
  galton history --height 50
  galton history --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			height, _ := cmd.Flags().GetInt("height")

			dbPath := filepath.Join(root, constants.OutputDirName, constants.IndexFileName)
			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				return fmt.Errorf("no run index at %s (run 'galton' first)", dbPath)
			}
			idx, err := store.NewSQLiteIndex(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open run index: %w", err)
			}
			defer idx.Close()

			ctx := cmd.Context()
			run, err := idx.LatestRun(ctx)
			if errors.Is(err, store.ErrNoRuns) {
				return fmt.Errorf("no runs recorded in %s", dbPath)
			}
			if err != nil {
				return err
			}
			recs, err := idx.ListCheckpoints(ctx, run.ID, height)
			if err != nil {
				return err
			}

			if jsonOut {
				out := make([]map[string]any, len(recs))
				for i, r := range recs {
					out[i] = checkpointJSON(r)
				}
				result := map[string]any{
					"run_id":      run.ID,
					"seed":        run.Seed,
					"started_at":  run.StartedAt.Format(time.RFC3339),
					"checkpoints": out,
				}
				if run.FinishedAt != nil {
					result["finished_at"] = run.FinishedAt.Format(time.RFC3339)
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			w := cmd.OutOrStdout()
			status := "incomplete"
			if run.FinishedAt != nil {
				status = "finished " + run.FinishedAt.Local().Format(time.DateTime)
			}
			fmt.Fprintf(w, "Run %d (seed %#x, started %s, %s)\n\n",
				run.ID, run.Seed, run.StartedAt.Local().Format(time.DateTime), status)
			if len(recs) == 0 {
				fmt.Fprintln(w, "No checkpoints recorded.")
				return nil
			}
			fmt.Fprintf(w, "%-8s %-10s %-14s %-14s %-12s %-4s %s\n",
				"HEIGHT", "BALLS", "MAX DEV", "MSE", "CHI-SQUARE", "DF", "P-VALUE")
			for _, r := range recs {
				fmt.Fprintf(w, "%-8d %-10d %-14.6g %-14.6g %-12.4g %-4d %.4g\n",
					r.Height, r.Trials, r.MaxDeviation, r.MeanSquaredError,
					r.ChiSquare, r.DegreesOfFreedom, r.PValue)
			}
			return nil
		},
	}

	cmd.Flags().Int("height", -1, "Only show this board height")
	return cmd
}

// checkpointJSON renders rec for JSON output. Undefined metrics become null.
func checkpointJSON(rec store.CheckpointRecord) map[string]any {
	return map[string]any{
		"height":             rec.Height,
		"trials":             rec.Trials,
		"max_deviation":      rec.MaxDeviation,
		"mean_squared_error": nullable(rec.MeanSquaredError),
		"chi_square":         nullable(rec.ChiSquare),
		"degrees_of_freedom": rec.DegreesOfFreedom,
		"p_value":            nullable(rec.PValue),
	}
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/nvandessel/galton/internal/config"
	"github.com/nvandessel/galton/internal/constants"
	"github.com/nvandessel/galton/internal/galton"
	"github.com/nvandessel/galton/internal/logging"
	"github.com/nvandessel/galton/internal/report"
	"github.com/nvandessel/galton/internal/simulation"
	"github.com/nvandessel/galton/internal/store"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the simulation (default command)",
		Long: `Drop 1000000 balls through each board height and write the checkpoint
files into <root>/out. Checkpoint metrics are also recorded in
<root>/out/galton.db unless index.enabled is false.

The board is seeded with a fixed constant, so every run produces the
same files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd)
		},
	}
}

func runSimulation(cmd *cobra.Command) error {
	root, _ := cmd.Flags().GetString("root")
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

	outDir := filepath.Join(root, constants.OutputDirName)
	writer, err := report.NewWriter(outDir)
	if err != nil {
		return fmt.Errorf("%w (run 'galton init' first)", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	stopOnSignal(ctx, cancel, logger)

	index, err := openIndex(cfg, outDir)
	if err != nil {
		return err
	}
	defer index.Close()

	runID, err := index.BeginRun(ctx, constants.Seed)
	if err != nil {
		return fmt.Errorf("failed to begin run: %w", err)
	}

	events := logging.NewEventLogger(outDir, cfg.Logging.Level)
	defer events.Close()

	start := time.Now()
	driver := simulation.NewDriver(galton.NewBoard(constants.Seed), logger,
		simulation.WithObserver(writer),
		simulation.WithObserver(simulation.NewMetricsObserver(index, runID, events, logger)),
	)
	if err := driver.Run(ctx, constants.Heights()); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	if err := index.FinishRun(ctx, runID); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	recs, err := index.ListCheckpoints(ctx, runID, -1)
	if err != nil {
		return err
	}

	if jsonOut {
		out := make([]map[string]any, len(recs))
		for i, r := range recs {
			out[i] = checkpointJSON(r)
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"status":      "complete",
			"run_id":      runID,
			"output":      outDir,
			"elapsed_ms":  time.Since(start).Milliseconds(),
			"checkpoints": out,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Wrote %d checkpoints to %s\n\n", len(recs), outDir)
	printFinalCheckpoints(w, recs)
	return nil
}

// openIndex opens the SQLite run index, or an in-memory one when the
// index is disabled so metrics are still summarized.
func openIndex(cfg *config.GaltonConfig, outDir string) (store.Index, error) {
	if !cfg.Index.Enabled {
		return store.NewInMemoryIndex(), nil
	}
	idx, err := store.NewSQLiteIndex(filepath.Join(outDir, constants.IndexFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open run index: %w", err)
	}
	return idx, nil
}

// stopOnSignal cancels ctx on SIGINT/SIGTERM. The driver notices at its
// next checkpoint.
func stopOnSignal(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("interrupted, stopping at next checkpoint")
			cancel()
		case <-ctx.Done():
		}
	}()
}

// printFinalCheckpoints prints the last checkpoint of each height.
func printFinalCheckpoints(w io.Writer, recs []store.CheckpointRecord) {
	fmt.Fprintf(w, "%-8s %-10s %-14s %-14s %s\n", "HEIGHT", "BALLS", "MAX DEV", "MSE", "P-VALUE")
	for i, r := range recs {
		if i+1 < len(recs) && recs[i+1].Height == r.Height {
			continue
		}
		fmt.Fprintf(w, "%-8d %-10d %-14.6g %-14.6g %.4g\n",
			r.Height, r.Trials, r.MaxDeviation, r.MeanSquaredError, r.PValue)
	}
}

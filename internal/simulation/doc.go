// Package simulation drives Galton board runs.
//
// A Driver drops balls through one board height at a time, strictly in
// sequence, and hands a read-only Snapshot of the histogram to every
// Observer at each checkpoint (10, 100, 1000, ... balls). Checkpoints are
// cumulative: the histogram keeps accumulating after a snapshot.
//
// Usage:
//
//	board := galton.NewBoard(constants.Seed)
//	d := simulation.NewDriver(board, logger,
//	    simulation.WithObserver(reportWriter),
//	    simulation.WithObserver(simulation.NewMetricsObserver(idx, runID, events, logger)),
//	)
//	if err := d.Run(ctx, constants.Heights()); err != nil {
//	    return err
//	}
package simulation

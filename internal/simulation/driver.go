package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nvandessel/galton/internal/constants"
	"github.com/nvandessel/galton/internal/galton"
)

// Snapshot is the state of one height's histogram at a checkpoint.
// Histogram[k] counts balls that came to rest in row k, and the counts sum
// to Trials. Observers must not modify or retain Histogram.
type Snapshot struct {
	Height    int
	Trials    int64
	Histogram []int64
}

// Observer receives every checkpoint of a run. An error aborts the run.
type Observer interface {
	Checkpoint(ctx context.Context, snap Snapshot) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, snap Snapshot) error

// Checkpoint calls f(ctx, snap).
func (f ObserverFunc) Checkpoint(ctx context.Context, snap Snapshot) error {
	return f(ctx, snap)
}

// Driver runs the trial loop for each board height in turn.
type Driver struct {
	board     *galton.Board
	logger    *slog.Logger
	observers []Observer
	maxTrials int64
}

// Option configures a Driver.
type Option func(*Driver)

// WithObserver registers o. Observers are called in registration order.
func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observers = append(d.observers, o) }
}

// WithMaxTrials overrides the number of balls dropped per height.
// Production runs use constants.MaxTrials.
func WithMaxTrials(n int64) Option {
	return func(d *Driver) { d.maxTrials = n }
}

// NewDriver creates a Driver that draws from board. A nil logger discards output.
func NewDriver(board *galton.Board, logger *slog.Logger, opts ...Option) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Driver{
		board:     board,
		logger:    logger,
		maxTrials: constants.MaxTrials,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run simulates every height in order. It stops at the first observer
// error, or when ctx is done at a checkpoint boundary.
func (d *Driver) Run(ctx context.Context, heights []int) error {
	for _, h := range heights {
		if err := d.runHeight(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) runHeight(ctx context.Context, height int) error {
	if height < 0 {
		return fmt.Errorf("board height must be non-negative, got %d", height)
	}
	d.logger.Info("simulating galton board", "height", height, "trials", d.maxTrials)
	start := time.Now()

	histogram := make([]int64, height+1)
	next := int64(constants.FirstCheckpoint)
	checkpoints := 0

	for trial := int64(1); trial <= d.maxTrials; trial++ {
		histogram[d.board.Drop(height)]++
		if trial != next {
			continue
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("height %d interrupted at %d trials: %w", height, trial, err)
		}
		snap := Snapshot{Height: height, Trials: trial, Histogram: histogram}
		for _, o := range d.observers {
			if err := o.Checkpoint(ctx, snap); err != nil {
				return fmt.Errorf("height %d checkpoint %d: %w", height, trial, err)
			}
		}
		d.logger.Debug("checkpoint", "height", height, "trials", trial)
		checkpoints++
		next *= constants.CheckpointFactor
	}

	d.logger.Info("simulation successful",
		"height", height,
		"checkpoints", checkpoints,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Checkpoints returns the checkpoint trial counts for a budget of maxTrials
// balls: 10, 100, ... up to the largest power of ten not above maxTrials.
func Checkpoints(maxTrials int64) []int64 {
	var out []int64
	for c := int64(constants.FirstCheckpoint); c <= maxTrials; c *= constants.CheckpointFactor {
		out = append(out, c)
	}
	return out
}

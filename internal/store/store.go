// Package store defines the run index: a record of every simulation run and
// the summary metrics of each of its checkpoints.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNoRuns is returned when the index holds no runs.
var ErrNoRuns = errors.New("store: no runs recorded")

// Run is one invocation of the simulation.
type Run struct {
	ID         int64      `json:"id"`
	Seed       uint64     `json:"seed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// CheckpointRecord holds the summary metrics of one (height, trials) checkpoint.
// MeanSquaredError is NaN for a height-0 board. The chi-square fields are
// only meaningful when DegreesOfFreedom > 0; too few balls to form two
// bins leaves them unset.
type CheckpointRecord struct {
	RunID            int64     `json:"run_id"`
	Height           int       `json:"height"`
	Trials           int64     `json:"trials"`
	MeanSquaredError float64   `json:"mean_squared_error"`
	MaxDeviation     float64   `json:"max_deviation"`
	ChiSquare        float64   `json:"chi_square"`
	DegreesOfFreedom int       `json:"degrees_of_freedom"`
	PValue           float64   `json:"p_value"`
	CreatedAt        time.Time `json:"created_at"`
}

// Index records runs and their checkpoints.
type Index interface {
	BeginRun(ctx context.Context, seed uint64) (int64, error)
	RecordCheckpoint(ctx context.Context, rec CheckpointRecord) error
	FinishRun(ctx context.Context, runID int64) error

	// LatestRun returns the most recently started run, or ErrNoRuns.
	LatestRun(ctx context.Context) (*Run, error)

	// ListCheckpoints returns the checkpoints of runID ordered by height
	// then trials. height < 0 selects every height.
	ListCheckpoints(ctx context.Context, runID int64, height int) ([]CheckpointRecord, error)

	Close() error
}

package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nvandessel/galton/internal/constants"
	"github.com/nvandessel/galton/internal/distribution"
	"github.com/nvandessel/galton/internal/logging"
	"github.com/nvandessel/galton/internal/store"
)

// Recorder persists checkpoint metrics. store.Index satisfies it.
type Recorder interface {
	RecordCheckpoint(ctx context.Context, rec store.CheckpointRecord) error
}

// MetricsObserver scores each checkpoint against the binomial distribution
// and records the result in the run index and the event trace.
type MetricsObserver struct {
	recorder Recorder
	runID    int64
	events   *logging.EventLogger
	logger   *slog.Logger
}

var _ Observer = (*MetricsObserver)(nil)

// NewMetricsObserver creates a MetricsObserver. recorder and events may be nil.
func NewMetricsObserver(recorder Recorder, runID int64, events *logging.EventLogger, logger *slog.Logger) *MetricsObserver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MetricsObserver{recorder: recorder, runID: runID, events: events, logger: logger}
}

// Checkpoint computes the metrics for snap and records them.
func (m *MetricsObserver) Checkpoint(ctx context.Context, snap Snapshot) error {
	rec, err := Measure(snap)
	if err != nil {
		return err
	}
	rec.RunID = m.runID

	if m.recorder != nil {
		if err := m.recorder.RecordCheckpoint(ctx, rec); err != nil {
			return fmt.Errorf("recording checkpoint: %w", err)
		}
	}

	m.logger.Debug("checkpoint metrics",
		"height", rec.Height,
		"trials", rec.Trials,
		"max_deviation", rec.MaxDeviation,
		"p_value", rec.PValue)
	m.logger.Log(ctx, logging.LevelTrace, "checkpoint histogram",
		"height", rec.Height,
		"trials", rec.Trials,
		"histogram", snap.Histogram)

	event := map[string]any{
		"event":         "checkpoint",
		"run_id":        rec.RunID,
		"height":        rec.Height,
		"trials":        rec.Trials,
		"max_deviation": rec.MaxDeviation,
	}
	// encoding/json rejects NaN
	if !math.IsNaN(rec.MeanSquaredError) {
		event["mean_squared_error"] = rec.MeanSquaredError
	}
	if rec.DegreesOfFreedom > 0 {
		event["chi_square"] = rec.ChiSquare
		event["degrees_of_freedom"] = rec.DegreesOfFreedom
		event["p_value"] = rec.PValue
	}
	if m.events.Trace() {
		event["histogram"] = snap.Histogram
	}
	m.events.Log(event)
	return nil
}

// Measure scores snap without recording it. The chi-square fields stay
// unset when the checkpoint has too few balls to form two bins.
func Measure(snap Snapshot) (store.CheckpointRecord, error) {
	cmp, err := distribution.Compare(snap.Histogram, snap.Trials, constants.DeflectProbability)
	if err != nil {
		return store.CheckpointRecord{}, fmt.Errorf("comparing histogram: %w", err)
	}

	rec := store.CheckpointRecord{
		Height:           snap.Height,
		Trials:           snap.Trials,
		MeanSquaredError: cmp.MeanSquaredError,
		MaxDeviation:     cmp.MaxDeviation,
		ChiSquare:        math.NaN(),
		PValue:           math.NaN(),
		CreatedAt:        time.Now().UTC(),
	}

	cs, err := distribution.ChiSquareTest(snap.Histogram, constants.DeflectProbability, constants.MinExpectedPerBin)
	switch {
	case errors.Is(err, distribution.ErrTooFewBins):
	case err != nil:
		return store.CheckpointRecord{}, fmt.Errorf("chi-square test: %w", err)
	default:
		rec.ChiSquare = cs.Statistic
		rec.DegreesOfFreedom = cs.DegreesOfFreedom
		rec.PValue = cs.PValue
	}
	return rec, nil
}

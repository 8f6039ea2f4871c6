package distribution

import "errors"

var (
	// ErrOutOfSupport is returned when k lies outside [0, n] or n is negative.
	ErrOutOfSupport = errors.New("distribution: k outside [0, n]")

	// ErrBadProbability is returned when p lies outside [0, 1].
	ErrBadProbability = errors.New("distribution: probability outside [0, 1]")

	// ErrNoTrials is returned when a comparison is requested for zero trials.
	ErrNoTrials = errors.New("distribution: trial count must be positive")

	// ErrTooFewBins is returned when pooling leaves fewer than two chi-square bins.
	ErrTooFewBins = errors.New("distribution: fewer than two bins after pooling")
)

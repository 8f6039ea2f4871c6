// Package constants provides named constants used throughout the galton codebase.
// The simulation parameters are fixed: runs are reproducible and comparable
// only because nobody can change them.
package constants

// Simulation parameters
const (
	// MaxTrials is the number of balls dropped per board height.
	MaxTrials = 1_000_000

	// FirstCheckpoint is the trial count of the first checkpoint.
	FirstCheckpoint = 10

	// CheckpointFactor is the multiplier between successive checkpoints.
	CheckpointFactor = 10

	// Seed seeds the trial generator. It is the ASCII bytes "MANU" read as
	// a little-endian 32-bit integer.
	Seed uint64 = 0x554E414D

	// DeflectProbability is the chance that a peg deflects a ball to the right.
	DeflectProbability = 0.5
)

// Heights returns the board heights simulated by a run, in order.
func Heights() []int {
	return []int{5, 10, 50, 100, 1000}
}

// Report constants
const (
	// NormalSamples is the number of intervals the normal curve is sampled on.
	// The curve file has NormalSamples+1 lines.
	NormalSamples = 1000

	// EpsilonFactor is 1/delta for the weak-law bound P(|S-nEX| >= eps*n) <= delta,
	// with delta = 0.1.
	EpsilonFactor = 10.0

	// MinExpectedPerBin is the smallest expected count a chi-squared bin may
	// have before it is pooled with its neighbour.
	MinExpectedPerBin = 5.0
)

// Output layout
const (
	// OutputDirName is the fixed output directory, relative to the project root.
	OutputDirName = "out"

	// IndexFileName is the SQLite run index inside the output directory.
	IndexFileName = "galton.db"

	// EventLogFileName is the JSONL checkpoint trace inside the output directory.
	EventLogFileName = "checkpoints.jsonl"

	// ConfigDirName is the per-user configuration directory under $HOME.
	ConfigDirName = ".galton"
)

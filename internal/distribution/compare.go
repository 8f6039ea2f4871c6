package distribution

import (
	"fmt"
	"math"

	"github.com/nvandessel/galton/internal/constants"
)

// Row is the comparison of one histogram bucket against its binomial expectation.
type Row struct {
	K         int
	PMF       float64
	Expected  float64 // PMF * trials
	Bound     float64 // Epsilon(PMF, trials) * trials
	Deviation float64 // |Expected - observed|
}

// Comparison scores an observed histogram against Binomial(n, p).
type Comparison struct {
	Height       int
	Trials       int64
	Rows         []Row
	MaxDeviation float64
	// MeanSquaredError is the binomial/normal discrepancy for Height. It
	// does not depend on the histogram.
	MeanSquaredError float64
}

// Epsilon returns the eps for which the weak law of large numbers gives
// P(|S_n - n*pmf| >= eps*n) <= 0.1, where S_n counts hits of an event of
// probability pmf in n trials. Chebyshev: var/(n*eps^2) = 0.1.
func Epsilon(pmf float64, trials int64) float64 {
	return math.Sqrt(constants.EpsilonFactor * pmf * (1 - pmf) / float64(trials))
}

// MeanSquaredError returns the mean over k in [0, n] of the squared
// difference between Binomial(n, p) and its normal approximation at k.
func MeanSquaredError(n int, p float64) (float64, error) {
	pmfs, err := BinomialPMFs(n, p)
	if err != nil {
		return 0, err
	}
	return meanSquaredError(pmfs, n, p), nil
}

func meanSquaredError(pmfs []float64, n int, p float64) float64 {
	mu, variance := BinomialMoments(n, p)
	if variance <= 0 {
		// Degenerate board: the normal approximation has no density.
		return math.NaN()
	}
	sum := 0.0
	for k, b := range pmfs {
		d := b - NormalPDF(float64(k), mu, variance)
		sum += d * d
	}
	return sum / float64(len(pmfs))
}

// Compare scores histogram, which must have n+1 buckets, after trials
// drops on a board of height n = len(histogram)-1.
func Compare(histogram []int64, trials int64, p float64) (*Comparison, error) {
	if len(histogram) == 0 {
		return nil, fmt.Errorf("compare: empty histogram: %w", ErrOutOfSupport)
	}
	if trials <= 0 {
		return nil, fmt.Errorf("compare: trials=%d: %w", trials, ErrNoTrials)
	}
	n := len(histogram) - 1
	pmfs, err := BinomialPMFs(n, p)
	if err != nil {
		return nil, err
	}

	c := &Comparison{
		Height:           n,
		Trials:           trials,
		Rows:             make([]Row, len(pmfs)),
		MeanSquaredError: meanSquaredError(pmfs, n, p),
	}
	t := float64(trials)
	for k, b := range pmfs {
		expected := b * t
		dev := math.Abs(expected - float64(histogram[k]))
		c.Rows[k] = Row{
			K:         k,
			PMF:       b,
			Expected:  expected,
			Bound:     Epsilon(b, trials) * t,
			Deviation: dev,
		}
		if dev > c.MaxDeviation {
			c.MaxDeviation = dev
		}
	}
	return c, nil
}

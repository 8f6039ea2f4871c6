package distribution

import "math"

// NormalPDF returns the density at x of a normal distribution with mean mu
// and the given variance. variance must be positive; callers guarantee it.
func NormalPDF(x, mu, variance float64) float64 {
	d := x - mu
	return math.Exp(-d*d/(2*variance)) / math.Sqrt(2*math.Pi*variance)
}

// BinomialMoments returns the mean and variance of Binomial(n, p), the
// parameters of its normal approximation.
func BinomialMoments(n int, p float64) (mu, variance float64) {
	return float64(n) * p, float64(n) * p * (1 - p)
}

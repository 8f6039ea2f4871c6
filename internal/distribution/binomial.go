package distribution

import (
	"fmt"
	"math"
)

// BinomialPMF returns P(X = k) for X ~ Binomial(n, p).
//
// The coefficient C(n, k) is accumulated as the product of (n-i)/(k-i) for
// i in [0, k). Every factor is at least 1, so the running product never
// exceeds the final coefficient. Since C(n, k) = C(n, n-k) the loop runs over
// the smaller of the two.
func BinomialPMF(k, n int, p float64) (float64, error) {
	if n < 0 || k < 0 || k > n {
		return 0, fmt.Errorf("binomial pmf k=%d n=%d: %w", k, n, ErrOutOfSupport)
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("binomial pmf p=%g: %w", p, ErrBadProbability)
	}

	m := k
	if n-k < m {
		m = n - k
	}
	coeff := 1.0
	for i := 0; i < m; i++ {
		coeff *= float64(n-i) / float64(m-i)
	}
	return coeff * math.Pow(p, float64(k)) * math.Pow(1-p, float64(n-k)), nil
}

// BinomialPMFs returns BinomialPMF(k, n, p) for every k in [0, n].
func BinomialPMFs(n int, p float64) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("binomial pmfs n=%d: %w", n, ErrOutOfSupport)
	}
	out := make([]float64, n+1)
	for k := range out {
		v, err := BinomialPMF(k, n, p)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

package distribution

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare is the result of a Pearson goodness-of-fit test.
type ChiSquare struct {
	Statistic        float64
	DegreesOfFreedom int
	PValue           float64
}

// ChiSquareTest tests observed, a histogram of drops on a board of height
// len(observed)-1, against Binomial(n, p). Adjacent buckets are pooled,
// scanning from the left, until each pool expects at least minExpected
// hits; a short trailing pool is merged into the previous one.
func ChiSquareTest(observed []int64, p, minExpected float64) (ChiSquare, error) {
	n := len(observed) - 1
	pmfs, err := BinomialPMFs(n, p)
	if err != nil {
		return ChiSquare{}, err
	}
	var total int64
	for _, c := range observed {
		total += c
	}
	if total <= 0 {
		return ChiSquare{}, fmt.Errorf("chi-square: %w", ErrNoTrials)
	}

	type pool struct{ obs, exp float64 }
	var pools []pool
	var cur pool
	for k, b := range pmfs {
		cur.obs += float64(observed[k])
		cur.exp += b * float64(total)
		if cur.exp >= minExpected {
			pools = append(pools, cur)
			cur = pool{}
		}
	}
	if cur.exp > 0 || cur.obs > 0 {
		if len(pools) == 0 {
			pools = append(pools, cur)
		} else {
			last := &pools[len(pools)-1]
			last.obs += cur.obs
			last.exp += cur.exp
		}
	}
	if len(pools) < 2 {
		return ChiSquare{}, fmt.Errorf("chi-square n=%d trials=%d: %w", n, total, ErrTooFewBins)
	}

	stat := 0.0
	for _, b := range pools {
		d := b.obs - b.exp
		stat += d * d / b.exp
	}
	df := len(pools) - 1
	return ChiSquare{
		Statistic:        stat,
		DegreesOfFreedom: df,
		PValue:           distuv.ChiSquared{K: float64(df)}.Survival(stat),
	}, nil
}

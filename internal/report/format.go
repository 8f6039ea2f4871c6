package report

import (
	"math"
	"strconv"
)

// formatReal renders v the way a default-configured C++ ostream does:
// shortest of fixed/exponent notation with 6 significant digits, e.g.
// 0.5, 31.25, 1e+06, 3.72529e-09.
func formatReal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Package distribution computes the reference distributions a Galton board
// is compared against, and the error metrics of that comparison.
//
// BinomialPMF builds the binomial coefficient as a running product of
// ratios instead of factorials, so it stays finite for boards of a
// thousand rows. NormalPDF is the Gaussian density used as the continuous
// approximation. Compare and ChiSquareTest score an observed histogram
// against Binomial(n, p).
package distribution

// Package stats is a thin test-support helper, not a testing framework:
// it quantifies how far a determinism sweep across workerCount strayed
// from exact equality, spec.md §8's testable property 1
// ("for any workerCount in {1,2,4,8}... bit-identical in content").
package stats

import "gonum.org/v1/gonum/floats"

// Variance returns the population variance of xs via gonum/floats' Sum
// for both the mean and sum-of-squared-deviations reductions. A
// determinism sweep that samples the same scalar (e.g. a settled body's
// final center.Y) across several workerCount runs should report exactly
// 0 here if the property holds.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := floats.Sum(xs) / float64(len(xs))
	sq := make([]float64, len(xs))
	for i, x := range xs {
		d := x - mean
		sq[i] = d * d
	}
	return floats.Sum(sq) / float64(len(xs))
}

// MaxAbsDiff returns the largest absolute deviation of any element from
// xs[0]. Variance alone can mask a single outlier among many identical
// runs; this catches it directly, at the cost of needing a reference
// element.
func MaxAbsDiff(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	base := xs[0]
	max := 0.0
	for _, x := range xs {
		d := x - base
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

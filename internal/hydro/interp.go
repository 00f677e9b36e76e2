package hydro

import "sort"

// Interpolator maps a value through a parallel (independent, dependent)
// curve pair. Every formula in this package takes one so that consumers
// can inject an alternative (or a mock in tests).
type Interpolator func(x float64, xs, ys []float64) float64

// Linear is clamped piecewise-linear interpolation over an ascending xs.
// Outside the curve range it returns the nearest endpoint, never
// extrapolates.
func Linear(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	// Index of the first knot strictly above x; x lives in [xs[i-1], xs[i]).
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	t := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + t*(ys[i]-ys[i-1])
}

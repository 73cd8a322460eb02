package tilekiln

import "math"

// ToleranceFunc computes the squared simplification tolerance (τ²) to
// use at a given zoom level, per spec.md §4.C: "the algorithm operates
// on τ²." Implementations must be pure functions of (z, options).
type ToleranceFunc func(z int, o *Options) float64

// defaultTolerance is spec.md's reference curve:
// τ = base/((1<<z)*extent), squared.
func defaultTolerance(z int, o *Options) float64 {
	denom := float64(uint64(1)<<uint(z)) * float64(o.Extent)
	if denom == 0 {
		return 1e-12
	}
	t := o.Tolerance / denom
	return t * t
}

// linearTolerance returns the cube of base/((1<<z)*extent), so its τ²
// falls by a factor of 8 per zoom level (the default curve's falls by
// 4) and, while that ratio is below 1, is smaller than the default
// curve's at every zoom.
func linearTolerance(z int, o *Options) float64 {
	denom := float64(uint64(1)<<uint(z)) * float64(o.Extent)
	if denom == 0 {
		return 1e-12
	}
	t := o.Tolerance / denom
	return t * t * t
}

// constantTolerance applies the same simplification at every zoom,
// ignoring z entirely.
func constantTolerance(z int, o *Options) float64 {
	if o.Extent == 0 {
		return 1e-12
	}
	t := o.Tolerance / float64(o.Extent)
	return t * t
}

// slowExponentialTolerance raises base/((1<<z)*extent) to the power
// 1.5 instead of 2, so its τ² falls more slowly with zoom than the
// default curve's; while that ratio is below 1 (as with the default
// options) its τ² is the larger one, so it simplifies more.
func slowExponentialTolerance(z int, o *Options) float64 {
	const exponent = 1.5
	denom := float64(uint64(1)<<uint(z)) * float64(o.Extent)
	if denom == 0 {
		return 1e-12
	}
	return math.Pow(o.Tolerance/denom, exponent)
}

// logarithmicTolerance decays slowly, particularly at high zooms.
func logarithmicTolerance(z int, o *Options) float64 {
	logFactor := math.Log(float64(z) + 2)
	if o.Extent == 0 || logFactor == 0 {
		return 1e-12
	}
	t := o.Tolerance / (logFactor * float64(o.Extent))
	return t * t
}

// stepTolerance applies a different multiplier of the base tolerance
// depending on whether z falls in the low/mid/high zoom band, relative
// to IndexMaxZoom and MaxZoom.
func stepTolerance(z int, o *Options) float64 {
	base := o.Tolerance
	var effective float64
	switch {
	case z < o.IndexMaxZoom-1:
		effective = base * 4
	case z < o.MaxZoom-1:
		effective = base * 1.5
	default:
		effective = base * 0.5
	}
	denom := float64(uint64(1)<<uint(z)) * float64(o.Extent)
	if denom == 0 {
		return 1e-12
	}
	t := effective / denom
	return t * t
}

// ToleranceFunctions is the named lookup table referenced by
// Options.ToleranceFunctionName (spec.md §6, §9).
var ToleranceFunctions = map[string]ToleranceFunc{
	"default":         defaultTolerance,
	"linear":          linearTolerance,
	"constant":        constantTolerance,
	"slowExponential": slowExponentialTolerance,
	"logarithmic":     logarithmicTolerance,
	"step":            stepTolerance,
}

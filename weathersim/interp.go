package weathersim

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LinearWeights returns the per-timestep blend weights for expanding hourly
// records to stepsPerHour values. Step t carries weight t/N toward the
// current hour's value, so the final step of the hour reproduces the record
// exactly.
func LinearWeights(stepsPerHour int) []float64 {
	w := make([]float64, stepsPerHour)
	for t := 1; t <= stepsPerHour; t++ {
		w[t-1] = float64(t) / float64(stepsPerHour)
	}
	return w
}

// SolarWeights returns blend weights centered on the half hour, reflecting
// that an hourly solar record is the integral over the hour rather than an
// instantaneous reading. With an even step count the mid-hour step takes the
// record unblended and the weight falls off by 1/N per step on both sides.
// With an odd count the two steps straddling the half hour share 1-1/(2N).
// A single step per hour blends the current and next hours equally.
func SolarWeights(stepsPerHour int) []float64 {
	n := stepsPerHour
	w := make([]float64, n)
	if n == 1 {
		w[0] = 0.5
		return w
	}
	step := 1.0 / float64(n)
	if n%2 == 0 {
		half := n / 2
		w[half-1] = 1.0
		for i := 1; half-1-i >= 0; i++ {
			w[half-1-i] = 1.0 - float64(i)*step
		}
		for i := 1; half-1+i < n; i++ {
			w[half-1+i] = 1.0 - float64(i)*step
		}
		return w
	}
	half := n / 2 // 1-based halfpoint, so 0-based indices half-1 and half
	peak := 1.0 - step/2.0
	w[half-1] = peak
	w[half] = peak
	for i := 1; half-1-i >= 0; i++ {
		w[half-1-i] = peak - float64(i)*step
	}
	for i := 1; half+i < n; i++ {
		w[half+i] = peak - float64(i)*step
	}
	return w
}

// Interpolate blends the previous and current hourly values with the given
// weight toward the current hour.
func Interpolate(prev, cur, weight float64) float64 {
	return prev*(1.0-weight) + cur*weight
}

// InterpolateSolar applies the centered weights to three consecutive hourly
// records. Steps up to the half hour split the remainder with the previous
// hour, later steps with the next. At one step per hour the previous hour
// drops out entirely.
func InterpolateSolar(prev, cur, next float64, weights []float64, step int) float64 {
	w := weights[step-1]
	center := len(weights) / 2
	if step <= center {
		return prev*(1.0-w) + cur*w
	}
	return next*(1.0-w) + cur*w
}

// InterpolateWindDir blends two wind directions in degrees along the shorter
// arc, so 350 and 10 meet near north instead of sweeping through south.
// The result is normalized to [0,360).
func InterpolateWindDir(prev, cur, weight float64) float64 {
	if math.Abs(cur-prev) > 180.0 {
		if cur > prev {
			prev += 360.0
		} else {
			cur += 360.0
		}
	}
	out := math.Mod(prev+(cur-prev)*weight, 360.0)
	if out < 0 {
		out += 360.0
	}
	return out
}

func seriesMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

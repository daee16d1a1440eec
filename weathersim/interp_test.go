package weathersim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LinearWeights(t *testing.T) {
	assert.Equal(t, []float64{1.0}, LinearWeights(1))
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1.0}, LinearWeights(4))
}

func Test_SolarWeights(t *testing.T) {
	// One step per hour blends the current and next hours equally.
	assert.Equal(t, []float64{0.5}, SolarWeights(1))

	// Even counts peak at the half hour and fall off by 1/N per step.
	assert.Equal(t, []float64{1.0, 0.5}, SolarWeights(2))
	assert.InDeltaSlice(t, []float64{0.75, 1.0, 0.75, 0.5}, SolarWeights(4), 1e-12)
	assert.InDeltaSlice(t, []float64{4.0 / 6, 5.0 / 6, 1.0, 5.0 / 6, 4.0 / 6, 0.5}, SolarWeights(6), 1e-12)

	// Odd counts straddle the half hour with two equal near-peak weights.
	assert.InDeltaSlice(t, []float64{5.0 / 6, 5.0 / 6, 0.5}, SolarWeights(3), 1e-12)
	assert.InDeltaSlice(t, []float64{0.7, 0.9, 0.9, 0.7, 0.5}, SolarWeights(5), 1e-12)
}

func Test_Interpolate(t *testing.T) {
	assert.InDelta(t, 10.0, Interpolate(10.0, 20.0, 0.0), 1e-12)
	assert.InDelta(t, 20.0, Interpolate(10.0, 20.0, 1.0), 1e-12)
	assert.InDelta(t, 12.5, Interpolate(10.0, 20.0, 0.25), 1e-12)
}

func Test_InterpolateSolar(t *testing.T) {
	// One step per hour averages the current and next hourly records; the
	// previous hour plays no part.
	w1 := SolarWeights(1)
	assert.InDelta(t, 300.0, InterpolateSolar(100.0, 200.0, 400.0, w1, 1), 1e-12)

	// Four steps: the first half blends toward the previous hour, the peak
	// step reproduces the record, the tail blends toward the next hour.
	w4 := SolarWeights(4)
	assert.InDelta(t, 175.0, InterpolateSolar(100.0, 200.0, 400.0, w4, 1), 1e-12)
	assert.InDelta(t, 200.0, InterpolateSolar(100.0, 200.0, 400.0, w4, 2), 1e-12)
	assert.InDelta(t, 250.0, InterpolateSolar(100.0, 200.0, 400.0, w4, 3), 1e-12)
	assert.InDelta(t, 300.0, InterpolateSolar(100.0, 200.0, 400.0, w4, 4), 1e-12)
}

func Test_InterpolateWindDir_ShortArc(t *testing.T) {
	// Plain case, no wraparound involved.
	assert.InDelta(t, 135.0, InterpolateWindDir(90.0, 180.0, 0.5), 1e-12)

	// Across north in both directions the blend stays on the short arc.
	assert.InDelta(t, 0.0, InterpolateWindDir(350.0, 10.0, 0.5), 1e-12)
	assert.InDelta(t, 355.0, InterpolateWindDir(350.0, 10.0, 0.25), 1e-12)
	assert.InDelta(t, 5.0, InterpolateWindDir(350.0, 10.0, 0.75), 1e-12)
	assert.InDelta(t, 0.0, InterpolateWindDir(10.0, 350.0, 0.5), 1e-12)
	assert.InDelta(t, 5.0, InterpolateWindDir(10.0, 350.0, 0.25), 1e-12)

	// The result never leaves [0,360).
	for _, w := range LinearWeights(6) {
		d := InterpolateWindDir(355.0, 15.0, w)
		require.GreaterOrEqual(t, d, 0.0)
		require.Less(t, d, 360.0)
	}
}

func Test_DailyWeather_CopyFrom(t *testing.T) {
	src := NewDailyWeather(4)
	src.Month, src.Day, src.DayOfYear = 7, 21, 202
	src.DayType = DayHoliday
	for i := range src.DryBulb {
		src.DryBulb[i] = float64(i)
		src.Rain[i] = i%2 == 0
	}

	dst := NewDailyWeather(4)
	dst.CopyFrom(src)

	assert.Equal(t, 7, dst.Month)
	assert.Equal(t, DayHoliday, dst.DayType)
	assert.Equal(t, src.DryBulb, dst.DryBulb)
	assert.Equal(t, src.Rain, dst.Rain)

	// The buffers must not alias: mutating the source leaves the copy alone.
	src.DryBulb[0] = -99.0
	src.Rain[0] = false
	assert.Equal(t, 0.0, dst.DryBulb[0])
	assert.True(t, dst.Rain[0])
}

func Test_DailyWeather_BackfillHourlySolar(t *testing.T) {
	d := NewDailyWeather(2)
	// Hour 1 steps carry 100 and 200, hour 2 steps 300 and 500.
	d.BeamSolar[0], d.BeamSolar[1] = 100, 200
	d.BeamSolar[2], d.BeamSolar[3] = 300, 500
	d.DifSolar[0], d.DifSolar[1] = 10, 30

	d.BackfillHourlySolar()
	assert.InDelta(t, 150.0, d.HourlyBeam[0], 1e-12)
	assert.InDelta(t, 400.0, d.HourlyBeam[1], 1e-12)
	assert.InDelta(t, 20.0, d.HourlyDif[0], 1e-12)
	assert.InDelta(t, 0.0, d.HourlyDif[23], 1e-12)
}

package weathersim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StdBaroPressAt(t *testing.T) {
	assert.InDelta(t, 101325.0, StdBaroPressAt(0), 1e-9)
	assert.InDelta(t, 89875.0, StdBaroPressAt(1000), 5.0)
	assert.InDelta(t, 79495.0, StdBaroPressAt(2000), 15.0)
}

func Test_MissingTracker_Sentinels(t *testing.T) {
	mt := NewMissingTracker(StdBaroPressAt(0))

	// Before any good reading the seeds are served.
	assert.InDelta(t, 6.0, mt.DryBulb(99.9), 1e-12)
	assert.InDelta(t, 3.0, mt.DewPoint(150.0), 1e-12)
	assert.InDelta(t, 50.0, mt.RelHum(999.0), 1e-12)
	assert.InDelta(t, 101325.0, mt.Pressure(999999.0), 1e-9)
	assert.InDelta(t, 180.0, mt.WindDir(999.0), 1e-12)
	assert.InDelta(t, 2.5, mt.WindSpeed(999.0), 1e-12)
	assert.InDelta(t, 5.0, mt.TotalSkyCover(99.0), 1e-12)
	assert.InDelta(t, 777.7, mt.Visibility(9999.0), 1e-12)
	assert.InDelta(t, 77777.0, mt.Ceiling(99999.0), 1e-12)
	assert.InDelta(t, 88.0, mt.DaysLastSnow(99.0), 1e-12)
	assert.InDelta(t, 0.0, mt.LiquidPrecip(999.0), 1e-12)

	// A good reading passes through and becomes the new substitute.
	assert.InDelta(t, 21.5, mt.DryBulb(21.5), 1e-12)
	assert.InDelta(t, 21.5, mt.DryBulb(99.9), 1e-12)

	m := mt.Missed()
	assert.Equal(t, 2, m.DryBulb)
	assert.Equal(t, 1, m.DewPoint)
	assert.Equal(t, 1, m.RelHum)
	assert.Equal(t, 1, m.Pressure)
	assert.Equal(t, 1, m.WindDir)
	assert.Equal(t, 1, m.WindSpeed)
}

func Test_MissingTracker_OutOfRange(t *testing.T) {
	mt := NewMissingTracker(StdBaroPressAt(0))

	assert.InDelta(t, 18.0, mt.DryBulb(18.0), 1e-12)
	// Physically impossible readings are tallied but pass through unchanged.
	assert.InDelta(t, -95.0, mt.DryBulb(-95.0), 1e-12)
	assert.InDelta(t, 82.0, mt.DryBulb(82.0), 1e-12)
	// They never become the substitute for a later missing reading.
	assert.InDelta(t, 18.0, mt.DryBulb(99.9), 1e-12)

	// Pressure alone gets the last good value on a range violation.
	assert.InDelta(t, 98000.0, mt.Pressure(98000.0), 1e-9)
	assert.InDelta(t, 98000.0, mt.Pressure(20000.0), 1e-9)

	assert.InDelta(t, 75.0, mt.DewPoint(75.0), 1e-12)
	assert.InDelta(t, 365.0, mt.WindDir(365.0), 1e-12)
	assert.InDelta(t, 55.0, mt.WindSpeed(55.0), 1e-12)
	assert.InDelta(t, -2.0, mt.RelHum(-2.0), 1e-12)

	r := mt.OutOfRange()
	assert.Equal(t, 2, r.DryBulb)
	assert.Equal(t, 1, r.DewPoint)
	assert.Equal(t, 1, r.Pressure)
	assert.Equal(t, 1, r.WindDir)
	assert.Equal(t, 1, r.WindSpeed)
	assert.Equal(t, 1, r.RelHum)
	assert.Equal(t, MissingCounts{DryBulb: 1}, mt.Missed())
}

func Test_MissingTracker_Radiation(t *testing.T) {
	mt := NewMissingTracker(StdBaroPressAt(0))

	assert.InDelta(t, 420.0, mt.BeamRad(420.0), 1e-12)
	assert.InDelta(t, 0.0, mt.BeamRad(9999.0), 1e-12)
	assert.InDelta(t, 0.0, mt.DiffuseRad(-3.0), 1e-12)

	m := mt.Missed()
	assert.Equal(t, 1, m.DirectRad)
	assert.Equal(t, 1, m.DiffuseRad)
}

func Test_MissingTracker_ResetKeepsContinuity(t *testing.T) {
	mt := NewMissingTracker(StdBaroPressAt(0))
	mt.DryBulb(25.0)
	mt.DryBulb(99.9)
	assert.Equal(t, 1, mt.Missed().DryBulb)

	// Counts reset per environment; the last good values do not.
	mt.ResetCounts()
	assert.Equal(t, MissingCounts{}, mt.Missed())
	assert.InDelta(t, 25.0, mt.DryBulb(99.9), 1e-12)
	assert.Equal(t, 1, mt.Missed().DryBulb)
}

func Test_MissingTracker_Report(t *testing.T) {
	mt := NewMissingTracker(StdBaroPressAt(0))
	rep := quietReporter()

	mt.DryBulb(99.9)
	mt.DryBulb(99.9)
	mt.WindSpeed(43.0)
	mt.Report(rep)

	warnings, _ := rep.Counts()
	assert.Equal(t, 2, warnings)
	// Reporting drains the tallies.
	assert.Equal(t, MissingCounts{}, mt.Missed())
	assert.Equal(t, MissingCounts{}, mt.OutOfRange())
}

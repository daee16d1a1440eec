package weathersim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Site_StationPressure(t *testing.T) {
	s := denverSite()
	assert.InDelta(t, 83011.0, s.StationPressure(), 10.0)

	sea := NewSite(Location{Elevation: 0.0})
	assert.InDelta(t, 101325.0, sea.StationPressure(), 1e-9)
}

func Test_Site_GroundReflectance_SnowModifier(t *testing.T) {
	s := denverSite()
	assert.InDelta(t, 0.2, s.EffectiveGroundReflectance(1, false), 1e-12)
	assert.InDelta(t, 0.2, s.EffectiveGroundReflectance(1, true), 1e-12)

	s.SnowReflectanceModifier = 2.0
	assert.InDelta(t, 0.4, s.EffectiveGroundReflectance(12, true), 1e-12)
	assert.InDelta(t, 0.2, s.EffectiveGroundReflectance(12, false), 1e-12)

	// The modifier never pushes reflectance past unity.
	s.SnowReflectanceModifier = 10.0
	assert.InDelta(t, 1.0, s.EffectiveGroundReflectance(6, true), 1e-12)
}

func Test_Site_MonthlyGroundTemp_NearestDepth(t *testing.T) {
	s := denverSite()
	_, ok := s.MonthlyGroundTemp(2.0, 1)
	assert.False(t, ok)

	shallow := GroundTempSet{Depth: 0.5}
	deep := GroundTempSet{Depth: 4.0}
	for m := 0; m < 12; m++ {
		shallow.Monthly[m] = 5.0
		deep.Monthly[m] = 12.0
	}
	s.GroundTemps = []GroundTempSet{shallow, deep}

	v, ok := s.MonthlyGroundTemp(0.7, 3)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-12)

	v, ok = s.MonthlyGroundTemp(3.0, 3)
	assert.True(t, ok)
	assert.InDelta(t, 12.0, v, 1e-12)
}

func Test_Site_WindProfile(t *testing.T) {
	s := denverSite()

	// Matching terrain and sensor profiles reproduce the met reading at
	// sensor height.
	assert.InDelta(t, 4.1, s.WindSpeedAt(4.1, 10.0), 1e-9)
	assert.Greater(t, s.WindSpeedAt(4.1, 50.0), 4.1)
	assert.Less(t, s.WindSpeedAt(4.1, 2.0), 4.1)
	assert.Zero(t, s.WindSpeedAt(4.1, 0.0))
}

func Test_Site_DryBulbProfile(t *testing.T) {
	s := denverSite()
	assert.InDelta(t, 25.0, s.DryBulbAt(25.0, tempSensorHeight), 1e-9)
	assert.InDelta(t, 24.3598, s.DryBulbAt(25.0, 100.0), 1e-3)
}

func Test_Site_WaterMains_Correlation(t *testing.T) {
	s := denverSite()
	s.AnnualAvgDryBulb = 11.0
	s.MonthlyAvgDryBulbMaxDiff = 22.0

	// The correlation peaks in late summer, lagging the air temperature.
	assert.InDelta(t, 19.59, s.WaterMainsTemp(225), 0.05)
	assert.Less(t, s.WaterMainsTemp(42), s.WaterMainsTemp(225))
	assert.Greater(t, s.WaterMainsTemp(42), 5.0)
}

func Test_DryBulbStats_Accumulate(t *testing.T) {
	var st DryBulbStats
	st.AddDay(1, 10.0)
	st.AddDay(1, 12.0)
	st.AddDay(7, 24.0)
	st.AddDay(7, 26.0)

	assert.InDelta(t, 18.0, st.AnnualAverage(), 1e-12)
	assert.InDelta(t, 14.0, st.MaxMonthlyDiff(), 1e-12)

	s := denverSite()
	st.ApplyTo(s)
	assert.InDelta(t, 18.0, s.AnnualAvgDryBulb, 1e-12)
	assert.InDelta(t, 14.0, s.MonthlyAvgDryBulbMaxDiff, 1e-12)

	// Configured statistics are not overwritten.
	preset := denverSite()
	preset.AnnualAvgDryBulb = 9.9
	st.ApplyTo(preset)
	assert.InDelta(t, 9.9, preset.AnnualAvgDryBulb, 1e-12)
}

package weathersim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DailySolarCoeffs_Declination(t *testing.T) {
	// Summer solstice: declination near +23.45 degrees.
	dc := DailySolarCoeffs(172)
	assert.InDelta(t, 0.3979, dc.SinDecl, 0.01)

	// Winter solstice: near -23.45 degrees.
	dc = DailySolarCoeffs(355)
	assert.InDelta(t, -0.3979, dc.SinDecl, 0.01)

	// Spring equinox: declination near zero.
	dc = DailySolarCoeffs(81)
	assert.InDelta(t, 0.0, dc.SinDecl, 0.03)

	for day := 1; day <= 366; day += 5 {
		dc := DailySolarCoeffs(day)
		assert.True(t, dc.CosDecl > 0.9, "day %d", day)
		assert.InDelta(t, 1.0, dc.SinDecl*dc.SinDecl+dc.CosDecl*dc.CosDecl, 1e-12)
	}
}

func Test_DailySolarCoeffs_EquationOfTime(t *testing.T) {
	// Early November: apparent sun runs about 16 minutes ahead.
	dc := DailySolarCoeffs(307)
	assert.InDelta(t, 0.272, dc.EquationOfTime, 0.02)

	// Mid February: about 14 minutes behind.
	dc = DailySolarCoeffs(45)
	assert.InDelta(t, -0.235, dc.EquationOfTime, 0.02)
}

func Test_DailySolarCoeffs_ClearSkyFactors(t *testing.T) {
	// Mid January against the ASHRAE tabulated values.
	dc := DailySolarCoeffs(21)
	assert.InDelta(t, 1229.0, dc.A, 5.0)
	assert.InDelta(t, 0.1415, dc.B, 0.002)
	assert.InDelta(t, 0.0573, dc.C, 0.002)

	// Mid July: weaker beam, stronger diffuse.
	dc = DailySolarCoeffs(202)
	assert.True(t, dc.A < 1110.0)
	assert.True(t, dc.B > 0.19)
	assert.True(t, dc.C > 0.12)

	// Orbit correction peaks near perihelion in early January.
	assert.True(t, DailySolarCoeffs(3).SolarConstantFactor > 1.03)
	assert.True(t, DailySolarCoeffs(185).SolarConstantFactor < 0.97)
}

func Test_SolarGeometry_SinAltitude(t *testing.T) {
	g := NewSolarGeometry(39.83, -104.65, -7.0)
	dc := DailySolarCoeffs(172)

	// Solar noon on the solstice at Denver's latitude: altitude about
	// 90 - 39.83 + 23.45 degrees.
	noon := g.SinAltitude(12.0, dc)
	assert.InDelta(t, math.Sin(degToRad(73.6)), noon, 0.01)

	// Midnight sun stays below the horizon at this latitude.
	assert.True(t, g.SinAltitude(0.5, dc) < 0.0)
	assert.False(t, SunUp(g.SinAltitude(0.5, dc)))
	assert.True(t, SunUp(noon))

	// Winter noon sits much lower.
	dcw := DailySolarCoeffs(355)
	assert.True(t, g.SinAltitude(12.0, dcw) < noon-0.4)
}

func Test_AirMass(t *testing.T) {
	assert.InDelta(t, 1.0, AirMass(1.0), 1e-12)
	assert.InDelta(t, 1.9943, AirMass(0.5), 0.001)
	// Horizon limit.
	assert.InDelta(t, 37.07837343, AirMass(0.0), 1e-9)
	assert.InDelta(t, 37.07837343, AirMass(-0.2), 1e-9)
	// Monotone toward the horizon.
	assert.True(t, AirMass(0.2) > AirMass(0.4))
}

func Test_ASHRAEClearSky(t *testing.T) {
	dc := DailySolarCoeffs(172)

	beam, diffuse := ASHRAEClearSky(0.8, 1.0, dc)
	assert.True(t, beam > 800.0 && beam < 1000.0, "beam %.1f", beam)
	assert.True(t, diffuse > 50.0 && diffuse < 150.0, "diffuse %.1f", diffuse)

	// The horizontal total cannot exceed the extraterrestrial flux.
	assert.True(t, beam*0.8+diffuse < GlobalSolarConstant)

	// Higher sun, more irradiance.
	beamLow, _ := ASHRAEClearSky(0.3, 1.0, dc)
	assert.True(t, beamLow < beam)

	// Sun below the horizon or a zero clearness yields nothing.
	beam, diffuse = ASHRAEClearSky(0.0, 1.0, dc)
	assert.Equal(t, 0.0, beam)
	assert.Equal(t, 0.0, diffuse)
	beam, diffuse = ASHRAEClearSky(0.8, 0.0, dc)
	assert.Equal(t, 0.0, beam)
	assert.Equal(t, 0.0, diffuse)
}

func Test_ASHRAETau(t *testing.T) {
	dc := DailySolarCoeffs(172)

	beam, diffuse := ASHRAETau(0.8, 0.33, 2.5, dc, false)
	assert.InDelta(t, 902.0, beam, 15.0)
	assert.InDelta(t, 98.5, diffuse, 5.0)

	// The 2017 exponents shift both components.
	beam17, diffuse17 := ASHRAETau(0.8, 0.33, 2.5, dc, true)
	assert.NotEqual(t, beam, beam17)
	assert.NotEqual(t, diffuse, diffuse17)
	assert.True(t, beam17 > 700.0 && beam17 < 1100.0)

	beam, diffuse = ASHRAETau(-0.1, 0.33, 2.5, dc, false)
	assert.Equal(t, 0.0, beam)
	assert.Equal(t, 0.0, diffuse)
}

func Test_ZhangHuang(t *testing.T) {
	// Clear summer afternoon.
	global, beam, diffuse := ZhangHuang(0.9, 0.0, 3.0, 40.0, 3.0)
	assert.InDelta(t, 789.3, global, 1.0)
	assert.InDelta(t, 499.8, beam, 2.0)
	assert.InDelta(t, 289.5, diffuse, 2.0)

	// Full cover drops the estimate well below the clear value.
	cloudy, _, _ := ZhangHuang(0.9, 1.0, 0.0, 80.0, 3.0)
	assert.True(t, cloudy < global)

	global, beam, diffuse = ZhangHuang(0.0, 0.0, 0.0, 40.0, 3.0)
	assert.Equal(t, 0.0, global)
	assert.Equal(t, 0.0, beam)
	assert.Equal(t, 0.0, diffuse)
}

func Test_SkyEmissivity(t *testing.T) {
	// Clark-Allen under a clear sky.
	esky := SkyEmissivity(SkyTempClarkAllen, 0.0, 20.0, 10.0, 0.0)
	assert.InDelta(t, 0.8145, esky, 0.001)

	// Overcast raises the effective emissivity.
	over := SkyEmissivity(SkyTempClarkAllen, 10.0, 20.0, 10.0, 0.0)
	assert.InDelta(t, 0.9399, over, 0.002)
	assert.True(t, over > esky)

	// The alternative correlations stay physical.
	vp := 1200.0 // Pa
	for _, model := range []SkyTempModel{SkyTempBrunt, SkyTempIdso, SkyTempBerdahlMartin} {
		e := SkyEmissivity(model, 5.0, 20.0, 10.0, vp)
		assert.True(t, e > 0.6 && e < 1.1, "model %d emissivity %.3f", model, e)
	}
}

func Test_HorizIRAndSkyTemp(t *testing.T) {
	ir := HorizIRFromSky(0.8145, 20.0)
	assert.InDelta(t, 341.0, ir, 1.0)

	// A black sky inverts exactly.
	for _, temp := range []float64{-20.0, 0.0, 15.0, 35.0} {
		assert.InDelta(t, temp, SkyTempFromIR(HorizIRFromSky(1.0, temp)), 1e-9)
	}

	// Real skies read colder than the air.
	assert.True(t, SkyTempFromIR(ir) < 20.0)
}

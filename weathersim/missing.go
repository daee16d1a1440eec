package weathersim

import "math"

// Sentinel thresholds above which an EPW field is treated as missing.
const (
	missingDryBulbAt  = 99.9
	missingDewPointAt = 99.9
	missingRelHumAt   = 999.0
	missingPressureAt = 999999.0
	missingWindAt     = 999.0
	missingSkyCvrAt   = 99.0
	missingVisAt      = 9999.0
	missingCeilingAt  = 99999.0
	missingPrecipAt   = 999.0
	missingAerosolAt  = 0.999
	missingSnowAt     = 999.0
	missingDaysSnowAt = 99.0
	missingAlbedoAt   = 999.0
	missingLiqPrecAt  = 999.0
	missingRadiation  = 9999.0
)

// StdBaroPressAt gives the standard atmosphere pressure in Pa at an
// elevation in meters.
func StdBaroPressAt(elevation float64) float64 {
	return 101325.0 * math.Pow(1.0-2.25577e-5*elevation, 5.2559)
}

// MissingCounts tallies policy hits per weather field over one
// environment.
type MissingCounts struct {
	DryBulb      int
	DewPoint     int
	RelHum       int
	Pressure     int
	WindDir      int
	WindSpeed    int
	TotalSkyCvr  int
	OpaqueSkyCvr int
	Visibility   int
	Ceiling      int
	PrecipWater  int
	AerosolDepth int
	SnowDepth    int
	DaysLastSnow int
	Albedo       int
	LiquidPrecip int
	DirectRad    int
	DiffuseRad   int
	GlobalRad    int
}

// MissingTracker applies the missing-data policy while reading weather
// records: a field at or past its sentinel is replaced with the last good
// value seen, while a field outside its physical range is tallied and passed
// through uncorrected. Station pressure is the one exception whose range
// violations are substituted as well. The last-good values start from
// mild-day conditions so a file that opens with gaps still yields usable
// data.
type MissingTracker struct {
	lastDryBulb      float64
	lastDewPoint     float64
	lastRelHum       float64
	lastPressure     float64
	lastWindDir      float64
	lastWindSpeed    float64
	lastTotalSkyCvr  float64
	lastOpaqueSkyCvr float64
	lastVisibility   float64
	lastCeiling      float64
	lastPrecipWater  float64
	lastAerosol      float64
	lastSnowDepth    float64
	lastDaysLastSnow float64
	lastAlbedo       float64
	lastLiquidPrecip float64

	missed     MissingCounts
	outOfRange MissingCounts
}

// NewMissingTracker seeds the last-good values. stationPressure is the
// standard pressure for the site elevation, used until the file supplies a
// real reading.
func NewMissingTracker(stationPressure float64) *MissingTracker {
	return &MissingTracker{
		lastDryBulb:      6.0,
		lastDewPoint:     3.0,
		lastRelHum:       50.0,
		lastPressure:     stationPressure,
		lastWindDir:      180.0,
		lastWindSpeed:    2.5,
		lastTotalSkyCvr:  5.0,
		lastOpaqueSkyCvr: 5.0,
		lastVisibility:   777.7,
		lastCeiling:      77777.0,
		lastDaysLastSnow: 88.0,
	}
}

func (mt *MissingTracker) substitute(v, sentinel float64, last *float64, tally *int) float64 {
	if v >= sentinel {
		*tally++
		return *last
	}
	*last = v
	return v
}

// DryBulb applies the policy to a dry-bulb reading in C. Readings outside
// -90..70 C count as out of range and never become the substitute.
func (mt *MissingTracker) DryBulb(v float64) float64 {
	if v >= missingDryBulbAt {
		mt.missed.DryBulb++
		return mt.lastDryBulb
	}
	if v < -90.0 || v > 70.0 {
		mt.outOfRange.DryBulb++
		return v
	}
	mt.lastDryBulb = v
	return v
}

// DewPoint applies the policy to a dew-point reading in C, range -90..70 C.
func (mt *MissingTracker) DewPoint(v float64) float64 {
	if v >= missingDewPointAt {
		mt.missed.DewPoint++
		return mt.lastDewPoint
	}
	if v < -90.0 || v > 70.0 {
		mt.outOfRange.DewPoint++
		return v
	}
	mt.lastDewPoint = v
	return v
}

// RelHum applies the policy to a relative humidity in percent, range 0..110.
func (mt *MissingTracker) RelHum(v float64) float64 {
	if v >= missingRelHumAt {
		mt.missed.RelHum++
		return mt.lastRelHum
	}
	if v < 0.0 || v > 110.0 {
		mt.outOfRange.RelHum++
		return v
	}
	mt.lastRelHum = v
	return v
}

// Pressure applies the policy to a station pressure in Pa, range
// 31000..120000 Pa. Out-of-range pressures are substituted like missing
// ones.
func (mt *MissingTracker) Pressure(v float64) float64 {
	if v >= missingPressureAt {
		mt.missed.Pressure++
		return mt.lastPressure
	}
	if v <= 31000.0 || v > 120000.0 {
		mt.outOfRange.Pressure++
		return mt.lastPressure
	}
	mt.lastPressure = v
	return v
}

// WindDir applies the policy to a wind direction in degrees, range 0..360.
func (mt *MissingTracker) WindDir(v float64) float64 {
	if v >= missingWindAt {
		mt.missed.WindDir++
		return mt.lastWindDir
	}
	if v < 0.0 || v > 360.0 {
		mt.outOfRange.WindDir++
		return v
	}
	mt.lastWindDir = v
	return v
}

// WindSpeed applies the policy to a wind speed in m/s, range 0..40 m/s.
func (mt *MissingTracker) WindSpeed(v float64) float64 {
	if v >= missingWindAt {
		mt.missed.WindSpeed++
		return mt.lastWindSpeed
	}
	if v < 0.0 || v > 40.0 {
		mt.outOfRange.WindSpeed++
		return v
	}
	mt.lastWindSpeed = v
	return v
}

// TotalSkyCover applies the policy to total sky cover in tenths.
func (mt *MissingTracker) TotalSkyCover(v float64) float64 {
	return mt.substitute(v, missingSkyCvrAt, &mt.lastTotalSkyCvr, &mt.missed.TotalSkyCvr)
}

// OpaqueSkyCover applies the policy to opaque sky cover in tenths.
func (mt *MissingTracker) OpaqueSkyCover(v float64) float64 {
	return mt.substitute(v, missingSkyCvrAt, &mt.lastOpaqueSkyCvr, &mt.missed.OpaqueSkyCvr)
}

// Visibility applies the policy to visibility in km.
func (mt *MissingTracker) Visibility(v float64) float64 {
	return mt.substitute(v, missingVisAt, &mt.lastVisibility, &mt.missed.Visibility)
}

// Ceiling applies the policy to ceiling height in m.
func (mt *MissingTracker) Ceiling(v float64) float64 {
	return mt.substitute(v, missingCeilingAt, &mt.lastCeiling, &mt.missed.Ceiling)
}

// PrecipWater applies the policy to precipitable water in mm.
func (mt *MissingTracker) PrecipWater(v float64) float64 {
	return mt.substitute(v, missingPrecipAt, &mt.lastPrecipWater, &mt.missed.PrecipWater)
}

// AerosolDepth applies the policy to aerosol optical depth in thousandths.
func (mt *MissingTracker) AerosolDepth(v float64) float64 {
	return mt.substitute(v, missingAerosolAt, &mt.lastAerosol, &mt.missed.AerosolDepth)
}

// SnowDepth applies the policy to snow depth in cm.
func (mt *MissingTracker) SnowDepth(v float64) float64 {
	return mt.substitute(v, missingSnowAt, &mt.lastSnowDepth, &mt.missed.SnowDepth)
}

// DaysLastSnow applies the policy to days since last snowfall.
func (mt *MissingTracker) DaysLastSnow(v float64) float64 {
	return mt.substitute(v, missingDaysSnowAt, &mt.lastDaysLastSnow, &mt.missed.DaysLastSnow)
}

// Albedo applies the policy to surface albedo.
func (mt *MissingTracker) Albedo(v float64) float64 {
	return mt.substitute(v, missingAlbedoAt, &mt.lastAlbedo, &mt.missed.Albedo)
}

// LiquidPrecip applies the policy to liquid precipitation depth in mm.
func (mt *MissingTracker) LiquidPrecip(v float64) float64 {
	return mt.substitute(v, missingLiqPrecAt, &mt.lastLiquidPrecip, &mt.missed.LiquidPrecip)
}

// BeamRad maps a missing or negative direct normal radiation to zero.
func (mt *MissingTracker) BeamRad(v float64) float64 {
	if v >= missingRadiation || v < 0.0 {
		mt.missed.DirectRad++
		return 0.0
	}
	return v
}

// DiffuseRad maps a missing or negative diffuse horizontal radiation to zero.
func (mt *MissingTracker) DiffuseRad(v float64) float64 {
	if v >= missingRadiation || v < 0.0 {
		mt.missed.DiffuseRad++
		return 0.0
	}
	return v
}

// GlobalRad maps a missing or negative global horizontal radiation to zero.
func (mt *MissingTracker) GlobalRad(v float64) float64 {
	if v >= missingRadiation || v < 0.0 {
		mt.missed.GlobalRad++
		return 0.0
	}
	return v
}

// Missed returns the tally of sentinel substitutions.
func (mt *MissingTracker) Missed() MissingCounts { return mt.missed }

// OutOfRange returns the tally of range violations.
func (mt *MissingTracker) OutOfRange() MissingCounts { return mt.outOfRange }

// ResetCounts zeroes both tallies for a new environment. Last-good values
// carry over so data continuity survives environment boundaries.
func (mt *MissingTracker) ResetCounts() {
	mt.missed = MissingCounts{}
	mt.outOfRange = MissingCounts{}
}

// Report writes one warning per affected field, then clears the tallies.
func (mt *MissingTracker) Report(rep *Reporter) {
	type entry struct {
		name string
		n    int
	}
	missed := []entry{
		{"dry-bulb temperature", mt.missed.DryBulb},
		{"dew-point temperature", mt.missed.DewPoint},
		{"relative humidity", mt.missed.RelHum},
		{"atmospheric pressure", mt.missed.Pressure},
		{"wind direction", mt.missed.WindDir},
		{"wind speed", mt.missed.WindSpeed},
		{"total sky cover", mt.missed.TotalSkyCvr},
		{"opaque sky cover", mt.missed.OpaqueSkyCvr},
		{"visibility", mt.missed.Visibility},
		{"ceiling height", mt.missed.Ceiling},
		{"precipitable water", mt.missed.PrecipWater},
		{"aerosol optical depth", mt.missed.AerosolDepth},
		{"snow depth", mt.missed.SnowDepth},
		{"days since last snow", mt.missed.DaysLastSnow},
		{"albedo", mt.missed.Albedo},
		{"liquid precipitation", mt.missed.LiquidPrecip},
		{"direct normal radiation", mt.missed.DirectRad},
		{"diffuse horizontal radiation", mt.missed.DiffuseRad},
		{"global horizontal radiation", mt.missed.GlobalRad},
	}
	for _, e := range missed {
		if e.n > 0 {
			rep.Warning("missing %s in weather data replaced with last good value %d time(s)", e.name, e.n)
		}
	}
	ranged := []entry{
		{"dry-bulb temperature", mt.outOfRange.DryBulb},
		{"dew-point temperature", mt.outOfRange.DewPoint},
		{"relative humidity", mt.outOfRange.RelHum},
		{"atmospheric pressure", mt.outOfRange.Pressure},
		{"wind direction", mt.outOfRange.WindDir},
		{"wind speed", mt.outOfRange.WindSpeed},
	}
	for _, e := range ranged {
		if e.n > 0 {
			rep.Warning("out of range %s in weather data %d time(s)", e.name, e.n)
		}
	}
	mt.ResetCounts()
}

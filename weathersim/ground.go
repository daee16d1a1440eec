package weathersim

import "math"

const (
	earthRadius      = 6356000.0 // m
	atmosTempGrad    = 0.0065    // K/m
	tempSensorHeight = 1.5       // m
	windSensorHeight = 10.0      // m
)

// Site carries the location and terrain quantities that stay fixed across
// environments.
type Site struct {
	Location Location

	// Monthly ground reflectance, fraction. Defaults to 0.2 everywhere.
	GroundReflectance [12]float64
	// SnowReflectanceModifier scales reflectance while snow lies on the
	// ground. 1.0 leaves it unchanged.
	SnowReflectanceModifier float64

	// Ground temperature sets from the weather file header, by depth.
	GroundTemps []GroundTempSet

	// Wind profile of the surrounding terrain.
	WindProfileExponent      float64 // default 0.14, open country
	WindBoundaryLayer        float64 // m, default 270
	WindSensorProfileExp     float64 // exponent at the met station
	WindSensorBoundaryLayer  float64 // m, at the met station
	AnnualAvgDryBulb         float64 // C, for the water mains correlation
	MonthlyAvgDryBulbMaxDiff float64 // C, max monthly average spread
}

// NewSite applies the default terrain and reflectance values.
func NewSite(loc Location) *Site {
	s := &Site{
		Location:                loc,
		SnowReflectanceModifier: 1.0,
		WindProfileExponent:     0.14,
		WindBoundaryLayer:       270.0,
		WindSensorProfileExp:    0.14,
		WindSensorBoundaryLayer: 270.0,
	}
	for i := range s.GroundReflectance {
		s.GroundReflectance[i] = 0.2
	}
	return s
}

// StationPressure gives the standard pressure at the site elevation.
func (s *Site) StationPressure() float64 {
	return StdBaroPressAt(s.Location.Elevation)
}

// EffectiveGroundReflectance applies the snow modifier when snow is on the
// ground. month is 1..12.
func (s *Site) EffectiveGroundReflectance(month int, snowOnGround bool) float64 {
	refl := s.GroundReflectance[month-1]
	if snowOnGround {
		refl = math.Min(1.0, refl*s.SnowReflectanceModifier)
	}
	return refl
}

// MonthlyGroundTemp picks the header set whose depth lies closest to the
// requested one. The second result is false when the file carried no ground
// temperatures.
func (s *Site) MonthlyGroundTemp(depth float64, month int) (float64, bool) {
	if len(s.GroundTemps) == 0 {
		return 0, false
	}
	best := 0
	for i := 1; i < len(s.GroundTemps); i++ {
		if math.Abs(s.GroundTemps[i].Depth-depth) < math.Abs(s.GroundTemps[best].Depth-depth) {
			best = i
		}
	}
	return s.GroundTemps[best].Monthly[month-1], true
}

// WindSpeedAt translates the met station wind speed to another height using
// the power law boundary layer profile. Heights at or below ground return
// zero.
func (s *Site) WindSpeedAt(metSpeed, height float64) float64 {
	if height <= 0.0 {
		return 0.0
	}
	siteFactor := math.Pow(s.WindSensorBoundaryLayer/windSensorHeight, s.WindSensorProfileExp)
	return metSpeed * siteFactor * math.Pow(height/s.WindBoundaryLayer, s.WindProfileExponent)
}

// DryBulbAt translates the met station dry-bulb reading to another height
// using the standard lapse rate over a curved earth.
func (s *Site) DryBulbAt(metTemp, height float64) float64 {
	base := metTemp + atmosTempGrad*earthRadius*tempSensorHeight/(earthRadius+tempSensorHeight)
	return base - atmosTempGrad*earthRadius*height/(earthRadius+height)
}

// WaterMainsMethod selects how the mains water temperature is produced.
type WaterMainsMethod int

const (
	// WaterMainsCorrelation derives the temperature from the annual
	// dry-bulb statistics.
	WaterMainsCorrelation WaterMainsMethod = iota
	// WaterMainsSchedule reads it from a named schedule.
	WaterMainsSchedule
)

// WaterMainsTemp evaluates the mains temperature correlation for a day of
// the year. The fit works in Fahrenheit internally.
func (s *Site) WaterMainsTemp(dayOfYear int) float64 {
	tavgF := s.AnnualAvgDryBulb*9.0/5.0 + 32.0
	tdiffF := s.MonthlyAvgDryBulbMaxDiff * 9.0 / 5.0

	ratio := 0.4 + 0.01*(tavgF-44.0)
	lag := 35.0 - 1.0*(tavgF-44.0)
	tmainsF := (tavgF + 6.0) + ratio*(tdiffF/2.0)*math.Sin(degToRad(0.986*(float64(dayOfYear)-15.0-lag)-90.0))
	return (tmainsF - 32.0) * 5.0 / 9.0
}

// DryBulbStats accumulates daily mean dry-bulb temperatures over a weather
// run so the water mains correlation can fall back on observed statistics
// when the project file supplies none.
type DryBulbStats struct {
	monthSum   [12]float64
	monthCount [12]int
}

// AddDay folds one day's mean dry-bulb into the monthly tallies.
func (st *DryBulbStats) AddDay(month int, mean float64) {
	st.monthSum[month-1] += mean
	st.monthCount[month-1]++
}

// AnnualAverage is the mean of the monthly averages that have data.
func (st *DryBulbStats) AnnualAverage() float64 {
	sum := 0.0
	n := 0
	for m := 0; m < 12; m++ {
		if st.monthCount[m] > 0 {
			sum += st.monthSum[m] / float64(st.monthCount[m])
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// MaxMonthlyDiff is the spread between the warmest and coldest monthly
// average.
func (st *DryBulbStats) MaxMonthlyDiff() float64 {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for m := 0; m < 12; m++ {
		if st.monthCount[m] == 0 {
			continue
		}
		avg := st.monthSum[m] / float64(st.monthCount[m])
		lo = math.Min(lo, avg)
		hi = math.Max(hi, avg)
	}
	if math.IsInf(lo, 1) {
		return 0.0
	}
	return hi - lo
}

// ApplyTo fills the site statistics that the project file left at zero.
func (st *DryBulbStats) ApplyTo(s *Site) {
	if s.AnnualAvgDryBulb == 0.0 {
		s.AnnualAvgDryBulb = st.AnnualAverage()
	}
	if s.MonthlyAvgDryBulbMaxDiff == 0.0 {
		s.MonthlyAvgDryBulbMaxDiff = st.MaxMonthlyDiff()
	}
}

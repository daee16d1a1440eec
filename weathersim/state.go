package weathersim

import (
	"fmt"
	"strings"
)

// EnvironmentKind distinguishes the three simulation episode types.
type EnvironmentKind int

const (
	// DesignDayPeriod synthesizes a single parametric day.
	DesignDayPeriod EnvironmentKind = iota
	// RunPeriodWeather replays a span of the weather file.
	RunPeriodWeather
	// RunPeriodDesign replays a file span under design-run rules
	// (repeatable, schedules see the declared day type).
	RunPeriodDesign
)

func (k EnvironmentKind) String() string {
	switch k {
	case DesignDayPeriod:
		return "SizingPeriod:DesignDay"
	case RunPeriodWeather:
		return "RunPeriod"
	case RunPeriodDesign:
		return "SizingPeriod:WeatherFileDays"
	default:
		return fmt.Sprintf("EnvironmentKind(%d)", int(k))
	}
}

// DayType is the schedule day category. Values 1..7 coincide with Weekday;
// special days occupy 8..12.
type DayType int

const (
	DayHoliday DayType = iota + 8
	DaySummerDesign
	DayWinterDesign
	DayCustom1
	DayCustom2
)

func WeekdayDayType(w Weekday) DayType { return DayType(w) }

func (d DayType) String() string {
	switch {
	case d >= 1 && d <= 7:
		return Weekday(d).String()
	case d == DayHoliday:
		return "Holiday"
	case d == DaySummerDesign:
		return "SummerDesignDay"
	case d == DayWinterDesign:
		return "WinterDesignDay"
	case d == DayCustom1:
		return "CustomDay1"
	case d == DayCustom2:
		return "CustomDay2"
	default:
		return fmt.Sprintf("DayType(%d)", int(d))
	}
}

// ParseDayType accepts weekday names and the special-day category names.
func ParseDayType(s string) (DayType, error) {
	if w, err := ParseWeekday(s); err == nil {
		return WeekdayDayType(w), nil
	}
	switch strings.ToLower(s) {
	case "holiday":
		return DayHoliday, nil
	case "summerdesignday":
		return DaySummerDesign, nil
	case "winterdesignday":
		return DayWinterDesign, nil
	case "customday1":
		return DayCustom1, nil
	case "customday2":
		return DayCustom2, nil
	}
	return 0, fmt.Errorf("unknown day type %q", s)
}

// Environment is one simulation episode, built once from configuration and
// consumed read-only by the scheduler, except for the weekday table which is
// re-anchored on year rollover.
type Environment struct {
	Kind  EnvironmentKind
	Title string

	StartMonth, StartDay, StartYear int
	EndMonth, EndDay, EndYear       int
	StartWeekday                    Weekday
	// Absolute Julian day numbers; zero when the environment is year-agnostic.
	StartJulian, EndJulian int
	TotalDays              int

	UseDST           bool
	UseHolidays      bool
	UseRain          bool
	UseSnow          bool
	ApplyWeekendRule bool
	// ActualWeather pins the run to the calendar years recorded in the file.
	ActualWeather bool
	// TreatYearsAsConsecutive rolls the weekday table forward across repeat
	// cycles instead of restarting each cycle on StartWeekday.
	TreatYearsAsConsecutive bool

	// WeekdayByMonth holds the weekday of the first of each month, derived
	// from the anchor date and re-derived at year rollover.
	WeekdayByMonth [12]Weekday

	// DesignDayIndex points back into the loaded design-day specs for the
	// design-day kinds.
	DesignDayIndex int

	// NumSimYears repeats a run period (1 = single pass).
	NumSimYears int
}

// CalendarState carries the per-environment resolved calendar: leap handling
// and the day-of-year tables for special days and daylight saving. Index 0 of
// each table is unused so ordinal days map directly.
type CalendarState struct {
	Year    int
	LeapAdd int

	SpecialDayType [367]DayType
	HolidayIndex   [367]int
	DSTActive      [367]bool

	DST         DSTRange
	DSTResolved bool
}

// Reset clears the resolved tables for a new environment or a rollover
// re-resolution; both resolvers fully overwrite their markings afterwards.
func (cs *CalendarState) Reset(year int) {
	cs.Year = year
	cs.LeapAdd = LeapAdd(year)
	cs.SpecialDayType = [367]DayType{}
	cs.HolidayIndex = [367]int{}
	cs.DSTActive = [367]bool{}
	cs.DST = DSTRange{}
	cs.DSTResolved = false
}

// DailyWeather holds one simulated day expanded to the timestep grid. The
// engine keeps exactly two instances ("Today" and "Tomorrow"); promotion at
// day rollover copies by value so the buffers never alias.
type DailyWeather struct {
	Year, Month, Day int
	DayOfYear        int
	Weekday          Weekday
	// DayType is the effective schedule category: a resolved special day
	// overrides the plain weekday.
	DayType      DayType
	HolidayIndex int
	DSTActive    bool

	// Solar day constants, from the annual Fourier series.
	EquationOfTime      float64 // hours
	SinSolarDeclination float64
	CosSolarDeclination float64

	// Per-timestep series, hour-major: index = (hour-1)*StepsPerHour + step-1.
	StepsPerHour int
	DryBulb      []float64 // C
	DewPoint     []float64 // C
	RelHum       []float64 // %
	Pressure     []float64 // Pa
	HumRat       []float64 // kg water / kg dry air
	WindSpeed    []float64 // m/s
	WindDir      []float64 // degrees clockwise from north
	SkyTemp      []float64 // C
	HorizIR      []float64 // W/m2
	BeamSolar    []float64 // W/m2, normal to the sun
	DifSolar     []float64 // W/m2, horizontal
	GlobalSolar  []float64 // W/m2, horizontal
	LiquidPrecip []float64 // mm
	Rain         []bool
	Snow         []bool

	// Hour-boundary solar back-filled as the mean of each hour's timesteps;
	// the sub-hourly series is authoritative.
	HourlyBeam [24]float64
	HourlyDif  [24]float64
}

// NewDailyWeather allocates a day buffer for the given timestep resolution.
func NewDailyWeather(stepsPerHour int) *DailyWeather {
	n := 24 * stepsPerHour
	return &DailyWeather{
		StepsPerHour: stepsPerHour,
		DryBulb:      make([]float64, n),
		DewPoint:     make([]float64, n),
		RelHum:       make([]float64, n),
		Pressure:     make([]float64, n),
		HumRat:       make([]float64, n),
		WindSpeed:    make([]float64, n),
		WindDir:      make([]float64, n),
		SkyTemp:      make([]float64, n),
		HorizIR:      make([]float64, n),
		BeamSolar:    make([]float64, n),
		DifSolar:     make([]float64, n),
		GlobalSolar:  make([]float64, n),
		LiquidPrecip: make([]float64, n),
		Rain:         make([]bool, n),
		Snow:         make([]bool, n),
	}
}

// Index maps a 1-based hour and timestep to the flat series index.
func (d *DailyWeather) Index(hour, step int) int {
	return (hour-1)*d.StepsPerHour + step - 1
}

// CopyFrom value-copies src into d's own storage. Both buffers must share
// the same timestep resolution.
func (d *DailyWeather) CopyFrom(src *DailyWeather) {
	if d.StepsPerHour != src.StepsPerHour {
		panic("weathersim: day buffers differ in timestep resolution")
	}
	dry, dew, rh, p, w := d.DryBulb, d.DewPoint, d.RelHum, d.Pressure, d.HumRat
	ws, wd, st, ir := d.WindSpeed, d.WindDir, d.SkyTemp, d.HorizIR
	beam, dif, glob, lp := d.BeamSolar, d.DifSolar, d.GlobalSolar, d.LiquidPrecip
	rain, snow := d.Rain, d.Snow

	*d = *src

	d.DryBulb, d.DewPoint, d.RelHum, d.Pressure, d.HumRat = dry, dew, rh, p, w
	d.WindSpeed, d.WindDir, d.SkyTemp, d.HorizIR = ws, wd, st, ir
	d.BeamSolar, d.DifSolar, d.GlobalSolar, d.LiquidPrecip = beam, dif, glob, lp
	d.Rain, d.Snow = rain, snow

	copy(d.DryBulb, src.DryBulb)
	copy(d.DewPoint, src.DewPoint)
	copy(d.RelHum, src.RelHum)
	copy(d.Pressure, src.Pressure)
	copy(d.HumRat, src.HumRat)
	copy(d.WindSpeed, src.WindSpeed)
	copy(d.WindDir, src.WindDir)
	copy(d.SkyTemp, src.SkyTemp)
	copy(d.HorizIR, src.HorizIR)
	copy(d.BeamSolar, src.BeamSolar)
	copy(d.DifSolar, src.DifSolar)
	copy(d.GlobalSolar, src.GlobalSolar)
	copy(d.LiquidPrecip, src.LiquidPrecip)
	copy(d.Rain, src.Rain)
	copy(d.Snow, src.Snow)
}

// BackfillHourlySolar recomputes the hour-boundary beam/diffuse values as
// the mean of each hour's timesteps.
func (d *DailyWeather) BackfillHourlySolar() {
	n := d.StepsPerHour
	for hr := 0; hr < 24; hr++ {
		d.HourlyBeam[hr] = seriesMean(d.BeamSolar[hr*n : (hr+1)*n])
		d.HourlyDif[hr] = seriesMean(d.DifSolar[hr*n : (hr+1)*n])
	}
}

// CurrentWeather is the outdoor state exposed to the host solver for the
// current timestep. Repeated queries within one timestep return identical
// values.
type CurrentWeather struct {
	Year, Month, Day int
	DayOfYear        int
	Hour             int // 1..24
	TimeStep         int // 1..StepsPerHour
	Weekday          Weekday
	DayType          DayType
	HolidayIndex     int
	DSTActive        bool

	OutDryBulb   float64 // C
	OutDewPoint  float64 // C
	OutWetBulb   float64 // C
	OutRelHum    float64 // %
	OutHumRat    float64 // kg/kg
	OutBaroPress float64 // Pa
	OutEnthalpy  float64 // J/kg
	OutAirDens   float64 // kg/m3

	WindSpeed float64 // m/s
	WindDir   float64 // degrees

	BeamSolarRad float64 // W/m2
	DifSolarRad  float64 // W/m2
	GndSolarRad  float64 // W/m2, ground-reflected onto a vertical surface basis
	SolarAltSin  float64 // sine of solar altitude
	SunUp        bool

	SkyTemp    float64 // C
	HorizIRSky float64 // W/m2

	IsRain       bool
	IsSnow       bool
	LiquidPrecip float64 // mm
}

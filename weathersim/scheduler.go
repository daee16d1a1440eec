package weathersim

import (
	"fmt"

	"github.com/openbps/weathersim-go/psychro"
)

var _ Psychrometrics = psychro.Provider{}

// simDate tracks the calendar position of the day a buffer holds.
type simDate struct {
	Year, Month, Day int
	Ordinal          int
	Weekday          Weekday
}

// EngineOptions configures a new engine. Zero-valued providers fall back to
// the defaults: the bundled psychrometrics, an empty schedule set and a fresh
// reporter.
type EngineOptions struct {
	Site         *Site
	StepsPerHour int
	Psychro      Psychrometrics
	Schedules    ScheduleProvider
	Reporter     *Reporter

	// LocationFromFile adopts the weather file header's location at Setup
	// instead of the one carried by Site.
	LocationFromFile bool

	// SkyTempModel selects the emissivity correlation for weather-file
	// environments. Zero value is the Clark-Allen form.
	SkyTempModel SkyTempModel
	// SkyTempSource optionally replaces the correlation with a schedule.
	SkyTempSource       SkyTempSource
	SkyTempScheduleName string

	// DST overrides the weather file's daylight saving declaration.
	DST *DSTSpec
	// SpecialDays are project-declared holidays and custom days, applied to
	// every weather environment alongside the file's own when enabled.
	SpecialDays []SpecialDaySpec

	WaterMains         WaterMainsMethod
	WaterMainsSchedule string
}

// Engine owns all weather-simulation state: the environment list, the
// Today/Tomorrow day buffers, the resolved calendar, the missing-data
// tracker and the open weather file. All mutation happens through the
// load, open, advance, close sequence; the host reads back through
// Current and the buffer accessors.
type Engine struct {
	site  *Site
	geom  SolarGeometry
	psy   Psychrometrics
	sched ScheduleProvider
	rep   *Reporter

	stepsPerHour int
	linWeights   []float64
	solWeights   []float64

	locFromFile   bool
	skyModel      SkyTempModel
	skySource     SkyTempSource
	skySchedName  string
	dstOverride   *DSTSpec
	specialDays   []SpecialDaySpec
	waterMethod   WaterMainsMethod
	waterSchedIdx int

	designDays []DesignDay
	envs       []Environment

	reader  *EPWReader
	tracker *MissingTracker
	builder DesignDayBuilder
	stats   DryBulbStats

	cal      CalendarState
	today    *DailyWeather
	tomorrow *DailyWeather
	ddCache  *DailyWeather

	todayDate    simDate
	tomorrowDate simDate

	curEnv        int
	envStartYear  int
	simDayTotal   int // distinct days promoted in the current environment
	cycleDay      int // 1-based day within the current cycle held by Tomorrow
	cyclic        bool
	freshTomorrow bool
	hasLastHour   bool
	lastHourRec   WeatherRecord

	current   CurrentWeather
	setupDone bool
}

// NewEngine builds an engine from the options. The timestep count must
// divide the hour evenly.
func NewEngine(opt EngineOptions) (*Engine, error) {
	if opt.Site == nil {
		return nil, fmt.Errorf("weathersim: engine needs a site")
	}
	n := opt.StepsPerHour
	if n < 1 || n > 60 || 60%n != 0 {
		return nil, fmt.Errorf("weathersim: %d timesteps per hour does not divide the hour", n)
	}
	e := &Engine{
		site:         opt.Site,
		geom:         NewSolarGeometry(opt.Site.Location.Latitude, opt.Site.Location.Longitude, opt.Site.Location.TimeZone),
		psy:          opt.Psychro,
		sched:        opt.Schedules,
		rep:          opt.Reporter,
		stepsPerHour: n,
		linWeights:   LinearWeights(n),
		solWeights:   SolarWeights(n),
		locFromFile:  opt.LocationFromFile,
		skyModel:     opt.SkyTempModel,
		skySource:    opt.SkyTempSource,
		skySchedName: opt.SkyTempScheduleName,
		dstOverride:  opt.DST,
		specialDays:  opt.SpecialDays,
		waterMethod:  opt.WaterMains,
		today:        NewDailyWeather(n),
		tomorrow:     NewDailyWeather(n),
		curEnv:       -1,
	}
	if e.psy == nil {
		e.psy = psychro.Provider{}
	}
	if e.sched == nil {
		e.sched = NewProfileSchedules()
	}
	if e.rep == nil {
		e.rep = NewReporter()
	}
	e.builder = DesignDayBuilder{Site: e.site, Geom: e.geom, Psy: e.psy, Sched: e.sched, Rep: e.rep}
	if opt.WaterMains == WaterMainsSchedule {
		idx, err := e.sched.ScheduleIndex(opt.WaterMainsSchedule)
		if err != nil {
			return nil, fmt.Errorf("weathersim: water mains: %w", err)
		}
		e.waterSchedIdx = idx
	}
	return e, nil
}

// Reporter exposes the diagnostics sink, so hosts share one set of tallies.
func (e *Engine) Reporter() *Reporter { return e.rep }

// AddDesignDay registers a design day and its single-day environment.
func (e *Engine) AddDesignDay(dd DesignDay) {
	e.designDays = append(e.designDays, dd)
	e.envs = append(e.envs, Environment{
		Kind:           DesignDayPeriod,
		Title:          dd.Title,
		StartMonth:     dd.Month,
		StartDay:       dd.DayOfMonth,
		EndMonth:       dd.Month,
		EndDay:         dd.DayOfMonth,
		TotalDays:      1,
		NumSimYears:    1,
		DesignDayIndex: len(e.designDays) - 1,
	})
}

// RunPeriod describes a weather-file episode before calendar resolution.
type RunPeriod struct {
	Title                string
	StartMonth, StartDay int
	EndMonth, EndDay     int
	// Years are zero for typical-file runs; ActualWeather requires both.
	StartYear, EndYear int
	// StartWeekday zero derives the weekday from the file's data period.
	StartWeekday Weekday

	UseDST           bool
	UseHolidays      bool
	UseRain          bool
	UseSnow          bool
	ApplyWeekendRule bool
	ActualWeather    bool
	// TreatYearsAsConsecutive lets weekdays and years run on across repeat
	// cycles instead of restarting each cycle identically.
	TreatYearsAsConsecutive bool
	// NumSimYears repeats the period; zero means one pass.
	NumSimYears int
	// Sizing marks a repeatable design run period rather than an annual run.
	Sizing bool
}

// AddRunPeriod validates the basic shape of a run period and registers its
// environment. Calendar resolution happens when the environment opens.
func (e *Engine) AddRunPeriod(rp RunPeriod) error {
	if !ValidMonthDay(rp.StartMonth, rp.StartDay, 1) {
		return e.rep.Fatal("run period %s: invalid start date %d/%d", rp.Title, rp.StartMonth, rp.StartDay)
	}
	if !ValidMonthDay(rp.EndMonth, rp.EndDay, 1) {
		return e.rep.Fatal("run period %s: invalid end date %d/%d", rp.Title, rp.EndMonth, rp.EndDay)
	}
	if rp.ActualWeather && (rp.StartYear == 0 || rp.EndYear == 0) {
		return e.rep.Fatal("run period %s: actual-weather runs need explicit start and end years", rp.Title)
	}
	if (rp.StartYear == 0) != (rp.EndYear == 0) {
		return e.rep.Fatal("run period %s: give both years or neither", rp.Title)
	}
	kind := RunPeriodWeather
	if rp.Sizing {
		kind = RunPeriodDesign
	}
	years := rp.NumSimYears
	if years < 1 {
		years = 1
	}
	e.envs = append(e.envs, Environment{
		Kind:                    kind,
		Title:                   rp.Title,
		StartMonth:              rp.StartMonth,
		StartDay:                rp.StartDay,
		StartYear:               rp.StartYear,
		EndMonth:                rp.EndMonth,
		EndDay:                  rp.EndDay,
		EndYear:                 rp.EndYear,
		StartWeekday:            rp.StartWeekday,
		UseDST:                  rp.UseDST,
		UseHolidays:             rp.UseHolidays,
		UseRain:                 rp.UseRain,
		UseSnow:                 rp.UseSnow,
		ApplyWeekendRule:        rp.ApplyWeekendRule,
		ActualWeather:           rp.ActualWeather,
		TreatYearsAsConsecutive: rp.TreatYearsAsConsecutive,
		NumSimYears:             years,
	})
	return nil
}

// Setup performs the one-time load: design-day validation and, when any run
// period needs it, opening the weather file. weatherPath may be empty for
// design-day-only runs.
func (e *Engine) Setup(weatherPath string) error {
	if e.setupDone {
		return fmt.Errorf("weathersim: setup called twice")
	}
	for i := range e.designDays {
		if err := e.builder.Validate(&e.designDays[i]); err != nil {
			return err
		}
	}

	needsFile := false
	for _, env := range e.envs {
		if env.Kind != DesignDayPeriod {
			needsFile = true
		}
	}
	if needsFile {
		if weatherPath == "" {
			return e.rep.Fatal("run periods requested but no weather file given")
		}
		r, err := OpenEPW(weatherPath)
		if err != nil {
			return err
		}
		rph := r.Header.RecordsPerHour
		if rph != 1 && rph != e.stepsPerHour {
			r.Close()
			return e.rep.Fatal("weather file carries %d records per hour but the simulation runs %d timesteps; matching or hourly data required",
				rph, e.stepsPerHour)
		}
		e.reader = r
		e.adoptFileLocation(&r.Header.Location)
		// Project-configured ground temperatures win over the file header.
		if len(e.site.GroundTemps) == 0 {
			e.site.GroundTemps = r.Header.GroundTemps
		}
	} else if e.locFromFile {
		return e.rep.Fatal("no location given and no weather file to take one from")
	}
	e.setupDone = true
	return nil
}

// adoptFileLocation reconciles the project location with the weather file
// header: without a project location the file's is used; with one, a large
// disagreement is worth a warning but the project value stands.
func (e *Engine) adoptFileLocation(loc *Location) {
	if e.locFromFile {
		e.site.Location = *loc
		e.geom = NewSolarGeometry(loc.Latitude, loc.Longitude, loc.TimeZone)
		e.builder.Geom = e.geom
		return
	}
	cur := &e.site.Location
	if absDiff(cur.Latitude, loc.Latitude) > 1.0 || absDiff(cur.Longitude, loc.Longitude) > 1.0 {
		e.rep.Warning("site location %.2f,%.2f differs from weather file %s at %.2f,%.2f by more than a degree",
			cur.Latitude, cur.Longitude, loc.City, loc.Latitude, loc.Longitude)
	}
	if absDiff(cur.TimeZone, loc.TimeZone) > 0.0 {
		e.rep.Warning("site time zone %.1f differs from weather file time zone %.1f",
			cur.TimeZone, loc.TimeZone)
	}
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

// Close releases the weather file.
func (e *Engine) Close() error {
	if e.reader != nil {
		return e.reader.Close()
	}
	return nil
}

// Today and Tomorrow expose the double buffer read-only by convention.
func (e *Engine) Today() *DailyWeather    { return e.today }
func (e *Engine) Tomorrow() *DailyWeather { return e.tomorrow }

// Environment returns the environment currently open.
func (e *Engine) Environment() (*Environment, bool) {
	if e.curEnv < 0 || e.curEnv >= len(e.envs) {
		return nil, false
	}
	return &e.envs[e.curEnv], true
}

// envTotalDays is the environment length including repeat cycles.
func (e *Engine) envTotalDays(env *Environment) int {
	return env.TotalDays * env.NumSimYears
}

// NextEnvironment advances to the next environment and opens it: calendar
// resolution, weather-file positioning and the first day's lookahead fill.
// It reports false when the run list is exhausted.
func (e *Engine) NextEnvironment() (bool, error) {
	if !e.setupDone {
		return false, fmt.Errorf("weathersim: setup must run before environments open")
	}
	if e.curEnv+1 >= len(e.envs) {
		return false, nil
	}
	e.curEnv++
	env := &e.envs[e.curEnv]
	e.simDayTotal = 0
	e.cycleDay = 1
	e.hasLastHour = false
	e.freshTomorrow = false

	var err error
	if env.Kind == DesignDayPeriod {
		err = e.openDesignDay(env)
	} else {
		err = e.openRunPeriod(env)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// designDayYear anchors year-agnostic design days; any non-leap year works
// because the builder resolves day-of-year itself.
const designDayYear = 2009

func (e *Engine) openDesignDay(env *Environment) error {
	dd := &e.designDays[env.DesignDayIndex]
	if e.ddCache == nil {
		e.ddCache = NewDailyWeather(e.stepsPerHour)
	}
	e.cal.Reset(designDayYear)
	if err := e.builder.Build(dd, 0, e.ddCache); err != nil {
		return err
	}
	e.ddCache.Year = designDayYear
	e.tomorrow.CopyFrom(e.ddCache)
	e.tomorrowDate = simDate{
		Year:    designDayYear,
		Month:   dd.Month,
		Day:     dd.DayOfMonth,
		Ordinal: e.ddCache.DayOfYear,
		Weekday: e.ddCache.Weekday,
	}
	e.cyclic = false
	e.freshTomorrow = true
	return nil
}

// yearStartingOn finds a representative year whose January 1 weekday and
// leapness match. The 28-year Gregorian cycle guarantees a hit.
func yearStartingOn(jan1 Weekday, wantLeap bool) int {
	for y := 2006; y <= 2033; y++ {
		if IsLeapYear(y) == wantLeap && DayOfWeek(y, 1, 1) == jan1 {
			return y
		}
	}
	return designDayYear
}

func (e *Engine) openRunPeriod(env *Environment) error {
	if e.reader == nil {
		return e.rep.Fatal("run period %s: no weather file open", env.Title)
	}
	hdr := &e.reader.Header

	fileLeap := 0
	if hdr.LeapYearObserved {
		fileLeap = 1
	}

	// Anchor the weekday table. An explicit start weekday wins; otherwise
	// it derives from the data period's declared start weekday.
	year := env.StartYear
	startWd := env.StartWeekday
	if env.ActualWeather {
		startWd = DayOfWeek(env.StartYear, env.StartMonth, env.StartDay)
		if env.StartWeekday != 0 && env.StartWeekday != startWd {
			e.rep.Warning("run period %s: %d/%d/%d falls on %s, overriding the configured %s",
				env.Title, env.StartYear, env.StartMonth, env.StartDay, startWd, env.StartWeekday)
		}
	} else if startWd == 0 {
		if year != 0 {
			startWd = DayOfWeek(year, env.StartMonth, env.StartDay)
		} else {
			dp := hdr.Periods[0]
			fileWdbm := WeekdaysByMonth(dp.Start.Month, dp.Start.Day, dp.StartWeekday, fileLeap)
			startWd = ordinalWeekday(fileWdbm[0], OrdinalDay(env.StartMonth, env.StartDay, fileLeap))
		}
	}
	if year == 0 {
		wdbm := WeekdaysByMonth(env.StartMonth, env.StartDay, startWd, fileLeap)
		year = yearStartingOn(wdbm[0], hdr.LeapYearObserved)
	}

	env.StartWeekday = startWd
	e.envStartYear = year
	e.cal.Reset(year)
	env.WeekdayByMonth = WeekdaysByMonth(env.StartMonth, env.StartDay, startWd, e.cal.LeapAdd)

	if err := e.validateAgainstDataPeriods(env); err != nil {
		return err
	}
	e.computeSpan(env, year)
	if err := e.resolveEnvCalendar(env); err != nil {
		return err
	}

	e.tracker = NewMissingTracker(e.site.StationPressure())
	e.stats = DryBulbStats{}

	skipYear := 0
	if env.ActualWeather {
		skipYear = env.StartYear
	}
	e.reader.ResetScan()
	if err := e.reader.SkipToDate(env.StartMonth, env.StartDay, skipYear); err != nil {
		return err
	}

	startOrd := OrdinalDay(env.StartMonth, env.StartDay, e.cal.LeapAdd)
	e.tomorrowDate = simDate{
		Year:    year,
		Month:   env.StartMonth,
		Day:     env.StartDay,
		Ordinal: startOrd,
		Weekday: startWd,
	}
	return e.fillTomorrowFromFile(env)
}

// validateAgainstDataPeriods rejects run periods the file cannot serve.
// Actual-weather runs need a year-stamped period covering the exact span;
// typical runs need the month-day range and may cycle a full-year file.
func (e *Engine) validateAgainstDataPeriods(env *Environment) error {
	hdr := &e.reader.Header
	e.cyclic = false

	if env.ActualWeather {
		startJD, err := JulianDay(env.StartYear, env.StartMonth, env.StartDay)
		if err != nil {
			return e.rep.Fatal("run period %s: %v", env.Title, err)
		}
		endJD, err := JulianDay(env.EndYear, env.EndMonth, env.EndDay)
		if err != nil {
			return e.rep.Fatal("run period %s: %v", env.Title, err)
		}
		if endJD < startJD {
			return e.rep.Fatal("run period %s: end date precedes start date", env.Title)
		}
		env.StartJulian, env.EndJulian = startJD, endJD
		for _, dp := range hdr.Periods {
			if !dp.HasYear() {
				continue
			}
			dpStart, err1 := JulianDay(dp.StartYear, dp.Start.Month, dp.Start.Day)
			dpEnd, err2 := JulianDay(dp.EndYear, dp.End.Month, dp.End.Day)
			if err1 != nil || err2 != nil {
				continue
			}
			if startJD >= dpStart && endJD <= dpEnd {
				return nil
			}
		}
		return e.rep.Fatal("run period %s: weather file data periods do not cover %d/%d/%d through %d/%d/%d",
			env.Title, env.StartYear, env.StartMonth, env.StartDay, env.EndYear, env.EndMonth, env.EndDay)
	}

	fileLeap := 0
	if hdr.LeapYearObserved {
		fileLeap = 1
	}
	startOrd := OrdinalDay(env.StartMonth, env.StartDay, fileLeap)
	endOrd := OrdinalDay(env.EndMonth, env.EndDay, fileLeap)
	for _, dp := range hdr.Periods {
		span := dp.EndDay - dp.StartDay + 1
		if span <= 0 {
			span += 365 + fileLeap
		}
		if span >= 365 && len(hdr.Periods) == 1 {
			// A single full-year period serves any dates and repeats
			// cyclically. Files with several periods never rewind.
			e.cyclic = true
			return nil
		}
		if inOrdinalSpan(startOrd, dp.StartDay, dp.EndDay) &&
			inOrdinalSpan(endOrd, dp.StartDay, dp.EndDay) {
			return nil
		}
	}
	return e.rep.Fatal("run period %s: weather file data periods do not cover %d/%d through %d/%d",
		env.Title, env.StartMonth, env.StartDay, env.EndMonth, env.EndDay)
}

func inOrdinalSpan(ord, start, end int) bool {
	if end >= start {
		return ord >= start && ord <= end
	}
	return ord >= start || ord <= end
}

// computeSpan fixes the per-cycle day count.
func (e *Engine) computeSpan(env *Environment, year int) {
	if env.ActualWeather {
		env.TotalDays = env.EndJulian - env.StartJulian + 1
		return
	}
	last := 365 + e.cal.LeapAdd
	startOrd := OrdinalDay(env.StartMonth, env.StartDay, e.cal.LeapAdd)
	endOrd := OrdinalDay(env.EndMonth, env.EndDay, e.cal.LeapAdd)
	if endOrd >= startOrd {
		env.TotalDays = endOrd - startOrd + 1
	} else {
		env.TotalDays = last - startOrd + 1 + endOrd
	}
}

// resolveEnvCalendar marks the DST and special-day tables for the year the
// calendar state currently holds.
func (e *Engine) resolveEnvCalendar(env *Environment) error {
	hdr := &e.reader.Header

	if env.UseDST {
		spec := e.dstOverride
		if spec == nil && hdr.HasDST {
			spec = &hdr.DST
		}
		if spec != nil {
			if err := e.cal.ResolveDaylightSaving(*spec, env.WeekdayByMonth, e.rep); err != nil {
				return err
			}
		}
	}

	specs := append([]SpecialDaySpec{}, e.specialDays...)
	if env.UseHolidays {
		specs = append(specs, hdr.SpecialDays...)
	}
	if len(specs) > 0 {
		if err := e.cal.ResolveSpecialDays(specs, env.WeekdayByMonth, env.ApplyWeekendRule, e.rep); err != nil {
			return err
		}
	}
	return nil
}

// InitializeDay starts a simulated day: Tomorrow is promoted to Today and,
// unless this is a warmup repeat or the environment's final day, the next
// day's records fill the new Tomorrow. Warmup repeats re-promote the same
// day without consuming it. Year rollovers re-resolve the calendar exactly
// once at the boundary.
func (e *Engine) InitializeDay(warmup bool) error {
	env, ok := e.Environment()
	if !ok {
		return fmt.Errorf("weathersim: no environment open")
	}

	e.today.CopyFrom(e.tomorrow)
	e.todayDate = e.tomorrowDate
	if e.freshTomorrow {
		e.simDayTotal++
		e.freshTomorrow = false
	}
	if warmup || e.simDayTotal >= e.envTotalDays(env) || env.Kind == DesignDayPeriod {
		return nil
	}
	return e.advanceTomorrow(env)
}

// AdvanceDay is the non-warmup day step.
func (e *Engine) AdvanceDay() error { return e.InitializeDay(false) }

// advanceTomorrow computes the next calendar date, repositions across cycle
// boundaries, and reads the day into Tomorrow.
func (e *Engine) advanceTomorrow(env *Environment) error {
	e.cycleDay++
	if e.cycleDay > env.TotalDays {
		// Cycle boundary: repeats restart at the start date.
		e.cycleDay = 1
		var year int
		if env.TreatYearsAsConsecutive {
			year = e.tomorrowDate.Year
			if env.StartMonth < e.tomorrowDate.Month ||
				(env.StartMonth == e.tomorrowDate.Month && env.StartDay <= e.tomorrowDate.Day) {
				year++
			}
			if year != e.cal.Year {
				if err := e.rollCalendar(env, year, RollForward); err != nil {
					return err
				}
			}
		} else {
			year = e.envStartYear
			e.cal.Reset(year)
			env.WeekdayByMonth = WeekdaysByMonth(env.StartMonth, env.StartDay, env.StartWeekday, e.cal.LeapAdd)
			if err := e.resolveEnvCalendar(env); err != nil {
				return err
			}
		}
		ord := OrdinalDay(env.StartMonth, env.StartDay, e.cal.LeapAdd)
		e.tomorrowDate = simDate{
			Year:    year,
			Month:   env.StartMonth,
			Day:     env.StartDay,
			Ordinal: ord,
			Weekday: ordinalWeekday(env.WeekdayByMonth[0], ord),
		}
		// A full-year cycle reads straight through and wraps; anything
		// shorter has to reposition to the start date.
		if !e.cyclic || env.TotalDays < 365 {
			e.reader.ResetScan()
			skipYear := 0
			if env.ActualWeather {
				skipYear = year
			}
			e.hasLastHour = false
			if err := e.reader.SkipToDate(env.StartMonth, env.StartDay, skipYear); err != nil {
				return err
			}
		}
	} else {
		next := e.nextSimDate(e.tomorrowDate)
		if next.Year != e.tomorrowDate.Year {
			if err := e.rollCalendar(env, next.Year, RollForward); err != nil {
				return err
			}
			next.Ordinal = OrdinalDay(next.Month, next.Day, e.cal.LeapAdd)
		}
		e.tomorrowDate = next
	}
	return e.fillTomorrowFromFile(env)
}

// nextSimDate advances one calendar day.
func (e *Engine) nextSimDate(d simDate) simDate {
	year := d.Year
	ord := d.Ordinal + 1
	if ord > 365+LeapAdd(year) {
		year++
		ord = 1
	}
	month, day := MonthDayFromOrdinal(ord, LeapAdd(year))
	return simDate{Year: year, Month: month, Day: day, Ordinal: ord, Weekday: d.Weekday.Next(1)}
}

// rollCalendar re-resolves the calendar for a new year, carrying the weekday
// sequence across the boundary.
func (e *Engine) rollCalendar(env *Environment, newYear int, policy RolloverPolicy) error {
	prevJan1 := env.WeekdayByMonth[0]
	prevDays := 365 + e.cal.LeapAdd
	jan1 := RollWeekdays(policy, env.StartWeekday, prevJan1, prevDays)
	e.cal.Reset(newYear)
	env.WeekdayByMonth = WeekdaysByMonth(1, 1, jan1, e.cal.LeapAdd)
	return e.resolveEnvCalendar(env)
}

// fillTomorrowFromFile reads the day Tomorrow's date names and expands it to
// the timestep grid.
func (e *Engine) fillTomorrowFromFile(env *Environment) error {
	recs, err := e.reader.ReadDay(e.tomorrowDate.Month, e.tomorrowDate.Day, e.cyclic)
	if err != nil {
		return err
	}
	e.reader.ResetScan()
	recs.ApplyPolicy(e.tracker)
	if err := e.expandDay(env, recs, e.tomorrowDate, e.tomorrow); err != nil {
		return err
	}
	last := recs.Hours[23]
	e.lastHourRec = last[len(last)-1]
	e.hasLastHour = true
	e.freshTomorrow = true
	e.stats.AddDay(e.tomorrowDate.Month, seriesMean(e.tomorrow.DryBulb))
	return nil
}

// expandDay turns one day of file records into the per-timestep buffer.
// Hourly files interpolate between adjacent hours; native interval files map
// records straight onto timesteps.
func (e *Engine) expandDay(env *Environment, recs *DayRecords, date simDate, day *DailyWeather) error {
	n := e.stepsPerHour
	rph := e.reader.Header.RecordsPerHour

	day.Year = date.Year
	day.Month = date.Month
	day.Day = date.Day
	day.DayOfYear = date.Ordinal
	day.Weekday = date.Weekday
	day.DayType = WeekdayDayType(date.Weekday)
	day.HolidayIndex = 0
	if sp := e.cal.SpecialDayType[date.Ordinal]; sp != 0 {
		day.DayType = sp
		day.HolidayIndex = e.cal.HolidayIndex[date.Ordinal]
	}
	day.DSTActive = env.UseDST && e.cal.DSTActive[date.Ordinal]

	dc := DailySolarCoeffs(date.Ordinal)
	day.EquationOfTime = dc.EquationOfTime
	day.SinSolarDeclination = dc.SinDecl
	day.CosSolarDeclination = dc.CosDecl

	for hour := 1; hour <= 24; hour++ {
		cur := &recs.Hours[hour-1][0]

		if rph == n && rph > 1 {
			for step := 1; step <= n; step++ {
				e.setStepFromRecord(day, day.Index(hour, step), env, &recs.Hours[hour-1][step-1])
			}
			continue
		}

		prev := cur
		if hour > 1 {
			prev = &recs.Hours[hour-2][0]
		} else if e.hasLastHour {
			prev = &e.lastHourRec
		}
		// Solar at hour 24 blends toward hour 1 of the same day.
		next := &recs.Hours[0][0]
		if hour < 24 {
			next = &recs.Hours[hour][0]
		}

		for step := 1; step <= n; step++ {
			i := day.Index(hour, step)
			w := e.linWeights[step-1]

			day.DryBulb[i] = Interpolate(prev.DryBulb, cur.DryBulb, w)
			day.DewPoint[i] = Interpolate(prev.DewPoint, cur.DewPoint, w)
			day.RelHum[i] = Interpolate(prev.RelHum, cur.RelHum, w)
			day.Pressure[i] = Interpolate(prev.Pressure, cur.Pressure, w)
			day.WindSpeed[i] = Interpolate(prev.WindSpeed, cur.WindSpeed, w)
			day.WindDir[i] = InterpolateWindDir(prev.WindDir, cur.WindDir, w)
			day.BeamSolar[i] = InterpolateSolar(prev.DirNormRad, cur.DirNormRad, next.DirNormRad, e.solWeights, step)
			day.DifSolar[i] = InterpolateSolar(prev.DifHorizRad, cur.DifHorizRad, next.DifHorizRad, e.solWeights, step)
			day.GlobalSolar[i] = InterpolateSolar(prev.GlobalHorizRad, cur.GlobalHorizRad, next.GlobalHorizRad, e.solWeights, step)
			day.HumRat[i] = e.psy.WFnTdpPb(day.DewPoint[i], day.Pressure[i])

			cover := Interpolate(prev.OpaqueSkyCover, cur.OpaqueSkyCover, w)
			e.setStepSky(day, i, cover, interpolatedIR(prev.HorizIR, cur.HorizIR, w))

			day.Rain[i] = cur.IsRain && env.UseRain
			day.Snow[i] = cur.IsSnow && env.UseSnow
			day.LiquidPrecip[i] = cur.LiquidPrecipDepth / float64(n)
		}
	}

	if e.skySource != SkyTempCorrelation {
		if err := e.applySkySchedule(day); err != nil {
			return err
		}
	}
	day.BackfillHourlySolar()
	return nil
}

// setStepFromRecord maps one native interval record onto one timestep.
func (e *Engine) setStepFromRecord(day *DailyWeather, i int, env *Environment, rec *WeatherRecord) {
	day.DryBulb[i] = rec.DryBulb
	day.DewPoint[i] = rec.DewPoint
	day.RelHum[i] = rec.RelHum
	day.Pressure[i] = rec.Pressure
	day.WindSpeed[i] = rec.WindSpeed
	day.WindDir[i] = rec.WindDir
	day.BeamSolar[i] = rec.DirNormRad
	day.DifSolar[i] = rec.DifHorizRad
	day.GlobalSolar[i] = rec.GlobalHorizRad
	day.HumRat[i] = e.psy.WFnTdpPb(rec.DewPoint, rec.Pressure)

	ir := rec.HorizIR
	if ir >= missingRadiation || ir < 0 {
		ir = -1.0
	}
	e.setStepSky(day, i, rec.OpaqueSkyCover, ir)

	day.Rain[i] = rec.IsRain && env.UseRain
	day.Snow[i] = rec.IsSnow && env.UseSnow
	day.LiquidPrecip[i] = rec.LiquidPrecipDepth / float64(e.stepsPerHour)
}

// interpolatedIR blends the horizontal IR when both hours recorded it; a
// missing reading on either side yields the derive-from-emissivity marker.
func interpolatedIR(prev, cur, w float64) float64 {
	if prev >= missingRadiation || prev < 0 || cur >= missingRadiation || cur < 0 {
		return -1.0
	}
	return Interpolate(prev, cur, w)
}

// setStepSky stores sky temperature and IR for one timestep. ir < 0 means
// the file had no usable reading and the emissivity correlation fills in.
func (e *Engine) setStepSky(day *DailyWeather, i int, opaqueCover, ir float64) {
	if ir < 0 {
		vp := e.psy.SatPress(day.DewPoint[i])
		eps := SkyEmissivity(e.skyModel, opaqueCover, day.DryBulb[i], day.DewPoint[i], vp)
		ir = HorizIRFromSky(eps, day.DryBulb[i])
	}
	day.HorizIR[i] = ir
	day.SkyTemp[i] = SkyTempFromIR(ir)
}

// applySkySchedule overrides the sky temperature series from the configured
// schedule.
func (e *Engine) applySkySchedule(day *DailyWeather) error {
	idx, err := e.sched.ScheduleIndex(e.skySchedName)
	if err != nil {
		return fmt.Errorf("sky temperature: %w", err)
	}
	hourly, err := e.sched.DayValues(idx, day.DayOfYear, day.Weekday, 1)
	if err != nil {
		return fmt.Errorf("sky temperature: %w", err)
	}
	vals := blendHourly(hourly, day.StepsPerHour)
	for i := range vals {
		switch e.skySource {
		case SkyTempScheduleValue:
			day.SkyTemp[i] = vals[i]
		case SkyTempDeltaDryBulb:
			day.SkyTemp[i] = day.DryBulb[i] - vals[i]
		case SkyTempDeltaDewPoint:
			day.SkyTemp[i] = day.DewPoint[i] - vals[i]
		}
		tk := day.SkyTemp[i] + kelvinOffset
		day.HorizIR[i] = stefanBoltzmann * tk * tk * tk * tk
	}
	return nil
}

// SetCurrentWeather fixes the queryable outdoor state to one timestep of
// Today. hour is 1..24, step 1..StepsPerHour. Calling it again for the same
// timestep reproduces the same state.
func (e *Engine) SetCurrentWeather(hour, step int) {
	d := e.today
	i := d.Index(hour, step)

	cw := CurrentWeather{
		Year:         d.Year,
		Month:        d.Month,
		Day:          d.Day,
		DayOfYear:    d.DayOfYear,
		Hour:         hour,
		TimeStep:     step,
		Weekday:      d.Weekday,
		DayType:      d.DayType,
		HolidayIndex: d.HolidayIndex,
		DSTActive:    d.DSTActive,

		OutDryBulb:   d.DryBulb[i],
		OutDewPoint:  d.DewPoint[i],
		OutRelHum:    d.RelHum[i],
		OutHumRat:    d.HumRat[i],
		OutBaroPress: d.Pressure[i],

		WindSpeed: d.WindSpeed[i],
		WindDir:   d.WindDir[i],

		BeamSolarRad: d.BeamSolar[i],
		DifSolarRad:  d.DifSolar[i],

		SkyTemp:    d.SkyTemp[i],
		HorizIRSky: d.HorizIR[i],

		IsRain:       d.Rain[i],
		IsSnow:       d.Snow[i],
		LiquidPrecip: d.LiquidPrecip[i],
	}

	cw.OutWetBulb = e.psy.TwbFnTdbWPb(cw.OutDryBulb, cw.OutHumRat, cw.OutBaroPress)
	cw.OutEnthalpy = e.psy.HFnTdbW(cw.OutDryBulb, cw.OutHumRat)
	cw.OutAirDens = e.psy.RhoAirFnPbTdbW(cw.OutBaroPress, cw.OutDryBulb, cw.OutHumRat)

	dc := DayConstants{
		EquationOfTime: d.EquationOfTime,
		SinDecl:        d.SinSolarDeclination,
		CosDecl:        d.CosSolarDeclination,
	}
	t := float64(hour-1) + (float64(step)-0.5)/float64(e.stepsPerHour)
	cw.SolarAltSin = e.geom.SinAltitude(t, dc)
	cw.SunUp = SunUp(cw.SolarAltSin)
	if !cw.SunUp {
		cw.BeamSolarRad = 0.0
		cw.DifSolarRad = 0.0
	}
	global := cw.DifSolarRad + cw.BeamSolarRad*cw.SolarAltSin
	cw.GndSolarRad = global * e.site.EffectiveGroundReflectance(d.Month, cw.IsSnow)

	e.current = cw
}

// Current returns the state fixed by the last SetCurrentWeather call.
func (e *Engine) Current() CurrentWeather { return e.current }

// WaterMainsTemp gives the mains water temperature for Today.
func (e *Engine) WaterMainsTemp() float64 {
	if e.waterMethod == WaterMainsSchedule {
		return e.sched.Value(e.waterSchedIdx, e.today.DayOfYear, e.today.Weekday,
			e.current.Hour, e.current.TimeStep, e.stepsPerHour)
	}
	return e.site.WaterMainsTemp(e.today.DayOfYear)
}

// CloseEnvironment emits the environment's data-quality summary and clears
// the recurring-warning suppression.
func (e *Engine) CloseEnvironment() {
	env, ok := e.Environment()
	if ok && env.Kind != DesignDayPeriod && e.tracker != nil {
		e.tracker.Report(e.rep)
		e.stats.ApplyTo(e.site)
	}
	e.rep.FlushRecurring()
}

package weathersim

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Project is the top-level simulation input, normally read from a YAML file.
// A project names the weather file and timestep, and declares the run
// periods, design days, schedules and site overrides for one simulation.
type Project struct {
	Title            string `yaml:"title"`
	WeatherFile      string `yaml:"weather_file"`
	TimestepsPerHour int    `yaml:"timesteps_per_hour" validate:"required,min=1,max=60"`

	Location *LocationConfig `yaml:"location"`
	Site     SiteConfig      `yaml:"site"`
	Sky      SkyConfig       `yaml:"sky"`

	DaylightSaving *DaylightSavingConfig `yaml:"daylight_saving"`
	SpecialDays    []SpecialDayConfig    `yaml:"special_days" validate:"dive"`
	Schedules      []ScheduleConfig      `yaml:"schedules" validate:"dive"`
	RunPeriods     []RunPeriodConfig     `yaml:"run_periods" validate:"dive"`
	DesignDays     []DesignDayConfig     `yaml:"design_days" validate:"dive"`
}

// LocationConfig overrides the weather file header location. Omitting the
// block adopts the file's.
type LocationConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `yaml:"longitude" validate:"min=-180,max=180"`
	TimeZone  float64 `yaml:"time_zone" validate:"min=-12,max=14"`
	Elevation float64 `yaml:"elevation" validate:"min=-1000,max=9000"`
}

// SiteConfig carries terrain and ground properties. Nil pointers keep the
// open-country defaults.
type SiteConfig struct {
	GroundReflectance       []float64 `yaml:"ground_reflectance" validate:"omitempty,len=12,dive,min=0,max=1"`
	SnowReflectanceModifier *float64  `yaml:"snow_reflectance_modifier" validate:"omitempty,min=0,max=10"`
	TerrainExponent         *float64  `yaml:"terrain_exponent" validate:"omitempty,gt=0,lt=1"`
	TerrainBoundaryLayer    *float64  `yaml:"terrain_boundary_layer" validate:"omitempty,gt=0"`
	SensorExponent          *float64  `yaml:"sensor_exponent" validate:"omitempty,gt=0,lt=1"`
	SensorBoundaryLayer     *float64  `yaml:"sensor_boundary_layer" validate:"omitempty,gt=0"`

	AnnualAvgDryBulb    float64            `yaml:"annual_avg_drybulb"`
	MonthlyDryBulbRange float64            `yaml:"monthly_avg_drybulb_range" validate:"min=0"`
	WaterMainsMethod    string             `yaml:"water_mains_method"`
	WaterMainsSchedule  string             `yaml:"water_mains_schedule"`
	GroundTemperatures  []GroundTempConfig `yaml:"ground_temperatures" validate:"dive"`
}

// GroundTempConfig is one depth's monthly ground temperature set, overriding
// the weather file header.
type GroundTempConfig struct {
	Depth   float64   `yaml:"depth" validate:"min=0"`
	Monthly []float64 `yaml:"monthly" validate:"len=12"`
}

// SkyConfig selects the sky temperature treatment for weather environments.
type SkyConfig struct {
	Model    string `yaml:"model"`
	Source   string `yaml:"source"`
	Schedule string `yaml:"schedule"`
}

// DaylightSavingConfig overrides the weather file's daylight saving period.
type DaylightSavingConfig struct {
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

// SpecialDayConfig declares a project holiday or custom day.
type SpecialDayConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Date     string `yaml:"date" validate:"required"`
	Type     string `yaml:"type"`
	Duration int    `yaml:"duration" validate:"min=0,max=366"`
}

// ScheduleConfig declares one named profile: exactly one of constant, hourly
// or monthly must be present.
type ScheduleConfig struct {
	Name     string    `yaml:"name" validate:"required"`
	Constant *float64  `yaml:"constant"`
	Hourly   []float64 `yaml:"hourly" validate:"omitempty,len=24"`
	Monthly  []float64 `yaml:"monthly" validate:"omitempty,len=12"`
}

// RunPeriodConfig declares one weather-file episode. The default-on flags
// follow the common annual-run expectations: rain, snow, holidays and
// daylight saving all honored.
type RunPeriodConfig struct {
	Title     string `yaml:"title" validate:"required"`
	Start     string `yaml:"start" validate:"required"`
	End       string `yaml:"end" validate:"required"`
	StartYear int    `yaml:"start_year" validate:"min=0"`
	EndYear   int    `yaml:"end_year" validate:"min=0"`
	Weekday   string `yaml:"start_weekday"`

	ActualWeather    bool  `yaml:"actual_weather"`
	DST              *bool `yaml:"use_daylight_saving"`
	Holidays         *bool `yaml:"use_holidays"`
	Rain             *bool `yaml:"use_rain"`
	Snow             *bool `yaml:"use_snow"`
	WeekendRule      bool  `yaml:"apply_weekend_rule"`
	RepeatYears      int   `yaml:"repeat_years" validate:"min=0,max=200"`
	ConsecutiveYears bool  `yaml:"consecutive_years"`
	Sizing           bool  `yaml:"sizing"`
}

// DesignDayConfig declares one parametric design day.
type DesignDayConfig struct {
	Title   string `yaml:"title" validate:"required"`
	Month   int    `yaml:"month" validate:"required,min=1,max=12"`
	Day     int    `yaml:"day" validate:"required,min=1,max=31"`
	DayType string `yaml:"day_type"`

	MaxDryBulb    float64 `yaml:"max_drybulb"`
	DryBulbRange  float64 `yaml:"drybulb_range" validate:"min=0"`
	RangeType     string  `yaml:"range_type"`
	RangeSchedule string  `yaml:"range_schedule"`

	Humidity struct {
		Indicator    string  `yaml:"indicator"`
		Value        float64 `yaml:"value"`
		Schedule     string  `yaml:"schedule"`
		WetBulbRange float64 `yaml:"wetbulb_range" validate:"min=0"`
	} `yaml:"humidity"`

	Pressure  float64 `yaml:"pressure" validate:"min=0"`
	WindSpeed float64 `yaml:"wind_speed" validate:"min=0,max=40"`
	WindDir   float64 `yaml:"wind_dir" validate:"min=0,lt=360"`

	Solar struct {
		Model           string  `yaml:"model"`
		Clearness       float64 `yaml:"clearness" validate:"min=0,max=1.2"`
		TauB            float64 `yaml:"tau_b" validate:"min=0"`
		TauD            float64 `yaml:"tau_d" validate:"min=0"`
		BeamSchedule    string  `yaml:"beam_schedule"`
		DiffuseSchedule string  `yaml:"diffuse_schedule"`
	} `yaml:"solar"`

	SkyTemp struct {
		Source   string `yaml:"source"`
		Model    string `yaml:"model"`
		Schedule string `yaml:"schedule"`
	} `yaml:"sky_temp"`

	Rain bool `yaml:"rain"`
	Snow bool `yaml:"snow"`
	DST  bool `yaml:"dst"`
}

// LoadProject reads and validates a project file. Unknown keys are errors,
// so typos surface instead of silently dropping settings.
func LoadProject(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var p Project
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("project file %s: %w", path, err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("project file %s: %w", path, err)
	}
	if len(p.RunPeriods) == 0 && len(p.DesignDays) == 0 {
		return nil, fmt.Errorf("project file %s: no run periods or design days declared", path)
	}
	return &p, nil
}

// Engine assembles a configured engine from the project. The caller still
// runs Setup with the weather file path.
func (p *Project) Engine(rep *Reporter) (*Engine, error) {
	if rep == nil {
		rep = NewReporter()
	}

	sched, err := p.buildSchedules()
	if err != nil {
		return nil, err
	}
	site, err := p.buildSite()
	if err != nil {
		return nil, err
	}

	opt := EngineOptions{
		Site:             site,
		StepsPerHour:     p.TimestepsPerHour,
		Schedules:        sched,
		Reporter:         rep,
		LocationFromFile: p.Location == nil,
	}

	if opt.SkyTempModel, err = parseSkyModel(p.Sky.Model); err != nil {
		return nil, err
	}
	if opt.SkyTempSource, err = parseSkySource(p.Sky.Source); err != nil {
		return nil, err
	}
	opt.SkyTempScheduleName = p.Sky.Schedule
	if opt.SkyTempSource != SkyTempCorrelation {
		if _, err := sched.ScheduleIndex(p.Sky.Schedule); err != nil {
			return nil, fmt.Errorf("sky temperature: %w", err)
		}
	}

	if p.DaylightSaving != nil {
		spec, err := parseDSTConfig(p.DaylightSaving)
		if err != nil {
			return nil, err
		}
		opt.DST = spec
	}
	if opt.SpecialDays, err = p.parseSpecialDays(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(p.Site.WaterMainsMethod)) {
	case "", "correlation":
		opt.WaterMains = WaterMainsCorrelation
	case "schedule":
		opt.WaterMains = WaterMainsSchedule
		opt.WaterMainsSchedule = p.Site.WaterMainsSchedule
	default:
		return nil, fmt.Errorf("water mains method %q: want correlation or schedule", p.Site.WaterMainsMethod)
	}

	eng, err := NewEngine(opt)
	if err != nil {
		return nil, err
	}

	for i := range p.RunPeriods {
		rp, err := p.RunPeriods[i].toRunPeriod()
		if err != nil {
			return nil, err
		}
		if err := eng.AddRunPeriod(rp); err != nil {
			return nil, err
		}
	}
	for i := range p.DesignDays {
		dd, err := p.DesignDays[i].toDesignDay()
		if err != nil {
			return nil, err
		}
		eng.AddDesignDay(*dd)
	}
	return eng, nil
}

func (p *Project) buildSchedules() (*ProfileSchedules, error) {
	sched := NewProfileSchedules()
	seen := map[string]bool{}
	for _, sc := range p.Schedules {
		if seen[sc.Name] {
			return nil, fmt.Errorf("schedule %q declared twice", sc.Name)
		}
		seen[sc.Name] = true
		forms := 0
		if sc.Constant != nil {
			forms++
		}
		if len(sc.Hourly) > 0 {
			forms++
		}
		if len(sc.Monthly) > 0 {
			forms++
		}
		if forms != 1 {
			return nil, fmt.Errorf("schedule %q: give exactly one of constant, hourly or monthly", sc.Name)
		}
		switch {
		case sc.Constant != nil:
			sched.AddConstant(sc.Name, *sc.Constant)
		case len(sc.Hourly) > 0:
			var h [24]float64
			copy(h[:], sc.Hourly)
			sched.AddHourly(sc.Name, h)
		default:
			var m [12]float64
			copy(m[:], sc.Monthly)
			sched.AddMonthly(sc.Name, m)
		}
	}
	return sched, nil
}

func (p *Project) buildSite() (*Site, error) {
	var loc Location
	if p.Location != nil {
		loc = Location{
			City:      p.Location.Name,
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
			TimeZone:  p.Location.TimeZone,
			Elevation: p.Location.Elevation,
		}
	}
	site := NewSite(loc)

	sc := &p.Site
	if len(sc.GroundReflectance) == 12 {
		copy(site.GroundReflectance[:], sc.GroundReflectance)
	}
	if sc.SnowReflectanceModifier != nil {
		site.SnowReflectanceModifier = *sc.SnowReflectanceModifier
	}
	if sc.TerrainExponent != nil {
		site.WindProfileExponent = *sc.TerrainExponent
	}
	if sc.TerrainBoundaryLayer != nil {
		site.WindBoundaryLayer = *sc.TerrainBoundaryLayer
	}
	if sc.SensorExponent != nil {
		site.WindSensorProfileExp = *sc.SensorExponent
	}
	if sc.SensorBoundaryLayer != nil {
		site.WindSensorBoundaryLayer = *sc.SensorBoundaryLayer
	}
	site.AnnualAvgDryBulb = sc.AnnualAvgDryBulb
	site.MonthlyAvgDryBulbMaxDiff = sc.MonthlyDryBulbRange

	for _, gt := range sc.GroundTemperatures {
		set := GroundTempSet{Depth: gt.Depth}
		copy(set.Monthly[:], gt.Monthly)
		site.GroundTemps = append(site.GroundTemps, set)
	}
	return site, nil
}

func parseDSTConfig(c *DaylightSavingConfig) (*DSTSpec, error) {
	start, err := ParseDateSpec(c.Start)
	if err != nil {
		return nil, fmt.Errorf("daylight saving start: %w", err)
	}
	end, err := ParseDateSpec(c.End)
	if err != nil {
		return nil, fmt.Errorf("daylight saving end: %w", err)
	}
	return &DSTSpec{Start: start, End: end}, nil
}

func (p *Project) parseSpecialDays() ([]SpecialDaySpec, error) {
	var specs []SpecialDaySpec
	for _, sd := range p.SpecialDays {
		date, err := ParseDateSpec(sd.Date)
		if err != nil {
			return nil, fmt.Errorf("special day %q: %w", sd.Name, err)
		}
		dt := DayHoliday
		if sd.Type != "" {
			if dt, err = ParseDayType(sd.Type); err != nil {
				return nil, fmt.Errorf("special day %q: %w", sd.Name, err)
			}
		}
		dur := sd.Duration
		if dur == 0 {
			dur = 1
		}
		specs = append(specs, SpecialDaySpec{Name: sd.Name, Date: date, Duration: dur, Type: dt})
	}
	return specs, nil
}

func (c *RunPeriodConfig) toRunPeriod() (RunPeriod, error) {
	rp := RunPeriod{
		Title:                   c.Title,
		StartYear:               c.StartYear,
		EndYear:                 c.EndYear,
		ActualWeather:           c.ActualWeather,
		ApplyWeekendRule:        c.WeekendRule,
		TreatYearsAsConsecutive: c.ConsecutiveYears,
		NumSimYears:             c.RepeatYears,
		Sizing:                  c.Sizing,
		UseDST:                  boolOr(c.DST, true),
		UseHolidays:             boolOr(c.Holidays, true),
		UseRain:                 boolOr(c.Rain, true),
		UseSnow:                 boolOr(c.Snow, true),
	}
	start, err := parseMonthDay(c.Start)
	if err != nil {
		return rp, fmt.Errorf("run period %q start: %w", c.Title, err)
	}
	end, err := parseMonthDay(c.End)
	if err != nil {
		return rp, fmt.Errorf("run period %q end: %w", c.Title, err)
	}
	rp.StartMonth, rp.StartDay = start.Month, start.Day
	rp.EndMonth, rp.EndDay = end.Month, end.Day
	if c.Weekday != "" {
		wd, err := ParseWeekday(c.Weekday)
		if err != nil {
			return rp, fmt.Errorf("run period %q: %w", c.Title, err)
		}
		rp.StartWeekday = wd
	}
	return rp, nil
}

func parseMonthDay(s string) (DateSpec, error) {
	ds, err := ParseDateSpec(s)
	if err != nil {
		return ds, err
	}
	if ds.Kind != MonthDay {
		return ds, fmt.Errorf("date %q: want a plain month/day", s)
	}
	return ds, nil
}

func (c *DesignDayConfig) toDesignDay() (*DesignDay, error) {
	dd := &DesignDay{
		Title:               c.Title,
		Month:               c.Month,
		DayOfMonth:          c.Day,
		MaxDryBulb:          c.MaxDryBulb,
		DailyRange:          c.DryBulbRange,
		RangeScheduleName:   c.RangeSchedule,
		HumIndValue:         c.Humidity.Value,
		HumScheduleName:     c.Humidity.Schedule,
		WetBulbRange:        c.Humidity.WetBulbRange,
		Pressure:            c.Pressure,
		WindSpeed:           c.WindSpeed,
		WindDir:             c.WindDir,
		SkyClearness:        c.Solar.Clearness,
		TauB:                c.Solar.TauB,
		TauD:                c.Solar.TauD,
		BeamScheduleName:    c.Solar.BeamSchedule,
		DiffuseScheduleName: c.Solar.DiffuseSchedule,
		SkyTempScheduleName: c.SkyTemp.Schedule,
		RainInd:             c.Rain,
		SnowInd:             c.Snow,
		DSTInd:              c.DST,
	}
	var err error
	dd.DayType = DaySummerDesign
	if c.DayType != "" {
		if dd.DayType, err = ParseDayType(c.DayType); err != nil {
			return nil, fmt.Errorf("design day %q: %w", c.Title, err)
		}
	}
	if dd.RangeType, err = parseRangeType(c.RangeType); err != nil {
		return nil, fmt.Errorf("design day %q: %w", c.Title, err)
	}
	if dd.HumIndicator, err = parseHumIndicator(c.Humidity.Indicator); err != nil {
		return nil, fmt.Errorf("design day %q: %w", c.Title, err)
	}
	if dd.SolarModel, err = parseSolarModel(c.Solar.Model); err != nil {
		return nil, fmt.Errorf("design day %q: %w", c.Title, err)
	}
	if dd.SkyTempSource, err = parseSkySource(c.SkyTemp.Source); err != nil {
		return nil, fmt.Errorf("design day %q: %w", c.Title, err)
	}
	if dd.SkyTempModel, err = parseSkyModel(c.SkyTemp.Model); err != nil {
		return nil, fmt.Errorf("design day %q: %w", c.Title, err)
	}
	return dd, nil
}

func parseRangeType(s string) (DBRangeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return DBRangeDefaultMultipliers, nil
	case "multiplier-schedule":
		return DBRangeMultiplierSchedule, nil
	case "difference-schedule":
		return DBRangeDifferenceSchedule, nil
	case "temperature-profile":
		return DBRangeTemperatureProfile, nil
	}
	return 0, fmt.Errorf("range type %q: want default, multiplier-schedule, difference-schedule or temperature-profile", s)
}

func parseHumIndicator(s string) (HumIndicator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wetbulb":
		return HumIndWetBulb, nil
	case "dewpoint":
		return HumIndDewPoint, nil
	case "humidity-ratio":
		return HumIndHumidityRatio, nil
	case "enthalpy":
		return HumIndEnthalpy, nil
	case "relhum-schedule":
		return HumIndRelHumSchedule, nil
	case "wetbulb-profile-default":
		return HumIndWetBulbProfileDefault, nil
	case "wetbulb-profile-difference":
		return HumIndWetBulbProfileDifference, nil
	case "wetbulb-profile-multiplier":
		return HumIndWetBulbProfileMultiplier, nil
	}
	return 0, fmt.Errorf("humidity indicator %q not recognized", s)
}

func parseSolarModel(s string) (SolarModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clear-sky":
		return SolarASHRAEClearSky, nil
	case "tau":
		return SolarASHRAETau, nil
	case "tau-2017":
		return SolarASHRAETau2017, nil
	case "zhang-huang":
		return SolarZhangHuang, nil
	case "schedule":
		return SolarSchedule, nil
	}
	return 0, fmt.Errorf("solar model %q: want clear-sky, tau, tau-2017, zhang-huang or schedule", s)
}

func parseSkySource(s string) (SkyTempSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "correlation":
		return SkyTempCorrelation, nil
	case "schedule":
		return SkyTempScheduleValue, nil
	case "delta-drybulb":
		return SkyTempDeltaDryBulb, nil
	case "delta-dewpoint":
		return SkyTempDeltaDewPoint, nil
	}
	return 0, fmt.Errorf("sky temperature source %q: want correlation, schedule, delta-drybulb or delta-dewpoint", s)
}

func parseSkyModel(s string) (SkyTempModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clark-allen":
		return SkyTempClarkAllen, nil
	case "brunt":
		return SkyTempBrunt, nil
	case "idso":
		return SkyTempIdso, nil
	case "berdahl-martin":
		return SkyTempBerdahlMartin, nil
	}
	return 0, fmt.Errorf("sky temperature model %q: want clark-allen, brunt, idso or berdahl-martin", s)
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

package weathersim

import (
	"fmt"
	"strconv"
	"strings"
)

// Location is the site description from an EPW LOCATION header.
type Location struct {
	City      string
	StateProv string
	Country   string
	Source    string
	WMO       string
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees, east positive
	TimeZone  float64 // hours from UTC, east positive
	Elevation float64 // m
}

// TypicalExtremePeriod is one entry of the TYPICAL/EXTREME PERIODS header.
type TypicalExtremePeriod struct {
	Name       string
	PeriodType string // "Typical" or "Extreme"
	Start      DateSpec
	End        DateSpec
	StartDay   int // day of year, non-leap basis
	EndDay     int
}

// GroundTempSet is one depth series of the GROUND TEMPERATURES header.
type GroundTempSet struct {
	Depth        float64 // m
	Conductivity float64 // W/m-K, zero when not given
	Density      float64 // kg/m3, zero when not given
	SpecificHeat float64 // J/kg-K, zero when not given
	Monthly      [12]float64
}

// DataPeriod describes one contiguous span of records in the file.
type DataPeriod struct {
	Name         string
	StartWeekday Weekday
	Start        DateSpec
	End          DateSpec
	StartYear    int // zero when the file does not carry years
	EndYear      int
	StartDay     int // day of year using the period's own leap basis
	EndDay       int
}

// HasYear reports whether the period is pinned to actual calendar years.
func (dp DataPeriod) HasYear() bool { return dp.StartYear != 0 }

// EPWHeader is the parsed form of the eight EPW header records.
type EPWHeader struct {
	Location         Location
	DesignConditions []string
	TypicalPeriods   []TypicalExtremePeriod
	GroundTemps      []GroundTempSet
	LeapYearObserved bool
	HasDST           bool
	DST              DSTSpec
	SpecialDays      []SpecialDaySpec
	Comments1        string
	Comments2        string
	RecordsPerHour   int
	Periods          []DataPeriod
}

// The eight header records, in the order the format requires.
var epwHeaderOrder = [8]string{
	"LOCATION",
	"DESIGN CONDITIONS",
	"TYPICAL/EXTREME PERIODS",
	"GROUND TEMPERATURES",
	"HOLIDAYS/DAYLIGHT SAVINGS",
	"COMMENTS 1",
	"COMMENTS 2",
	"DATA PERIODS",
}

// ParseEPWHeader consumes the eight header lines. Order is enforced; a
// misplaced record is a hard error because the data lines that follow
// cannot be located reliably otherwise.
func ParseEPWHeader(lines []string) (EPWHeader, error) {
	var h EPWHeader
	if len(lines) < len(epwHeaderOrder) {
		return h, fmt.Errorf("weather file header: want %d records, have %d", len(epwHeaderOrder), len(lines))
	}
	for i, want := range epwHeaderOrder {
		fields := splitEPWLine(lines[i])
		if len(fields) == 0 || !strings.EqualFold(fields[0], want) {
			return h, fmt.Errorf("weather file header record %d: want %s, got %q", i+1, want, firstField(lines[i]))
		}
		var err error
		switch want {
		case "LOCATION":
			err = h.parseLocation(fields[1:])
		case "DESIGN CONDITIONS":
			h.DesignConditions = fields[1:]
		case "TYPICAL/EXTREME PERIODS":
			err = h.parseTypicalPeriods(fields[1:])
		case "GROUND TEMPERATURES":
			err = h.parseGroundTemps(fields[1:])
		case "HOLIDAYS/DAYLIGHT SAVINGS":
			err = h.parseHolidaysDST(fields[1:])
		case "COMMENTS 1":
			h.Comments1 = strings.Join(fields[1:], ",")
		case "COMMENTS 2":
			h.Comments2 = strings.Join(fields[1:], ",")
		case "DATA PERIODS":
			err = h.parseDataPeriods(fields[1:])
		}
		if err != nil {
			return h, fmt.Errorf("weather file header %s: %w", want, err)
		}
	}
	return h, nil
}

func splitEPWLine(line string) []string {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func firstField(line string) string {
	if i := strings.IndexByte(line, ','); i >= 0 {
		return strings.TrimSpace(line[:i])
	}
	return strings.TrimSpace(line)
}

func (h *EPWHeader) parseLocation(f []string) error {
	if len(f) < 9 {
		return fmt.Errorf("want 9 fields, have %d", len(f))
	}
	h.Location.City = f[0]
	h.Location.StateProv = f[1]
	h.Location.Country = f[2]
	h.Location.Source = f[3]
	h.Location.WMO = f[4]

	var err error
	if h.Location.Latitude, err = strconv.ParseFloat(f[5], 64); err != nil {
		return fmt.Errorf("latitude %q: %w", f[5], err)
	}
	if h.Location.Longitude, err = strconv.ParseFloat(f[6], 64); err != nil {
		return fmt.Errorf("longitude %q: %w", f[6], err)
	}
	if h.Location.TimeZone, err = strconv.ParseFloat(f[7], 64); err != nil {
		return fmt.Errorf("time zone %q: %w", f[7], err)
	}
	if h.Location.Elevation, err = strconv.ParseFloat(f[8], 64); err != nil {
		return fmt.Errorf("elevation %q: %w", f[8], err)
	}

	loc := h.Location
	if loc.Latitude < -90.0 || loc.Latitude > 90.0 {
		return fmt.Errorf("latitude %.2f out of range -90..90", loc.Latitude)
	}
	if loc.Longitude < -180.0 || loc.Longitude > 180.0 {
		return fmt.Errorf("longitude %.2f out of range -180..180", loc.Longitude)
	}
	if loc.TimeZone < -12.0 || loc.TimeZone > 14.0 {
		return fmt.Errorf("time zone %.2f out of range -12..14", loc.TimeZone)
	}
	if loc.Elevation <= -1000.0 || loc.Elevation >= 9999.9 {
		return fmt.Errorf("elevation %.1f out of range", loc.Elevation)
	}
	return nil
}

func (h *EPWHeader) parseTypicalPeriods(f []string) error {
	if len(f) == 0 {
		return nil
	}
	n, err := strconv.Atoi(f[0])
	if err != nil || n < 0 {
		return fmt.Errorf("period count %q", f[0])
	}
	f = f[1:]
	for i := 0; i < n; i++ {
		if len(f) < 4 {
			return fmt.Errorf("period %d: truncated record", i+1)
		}
		start, _, err := parseEPWDate(f[2])
		if err != nil {
			return fmt.Errorf("period %q start: %w", f[0], err)
		}
		end, _, err := parseEPWDate(f[3])
		if err != nil {
			return fmt.Errorf("period %q end: %w", f[0], err)
		}
		p := TypicalExtremePeriod{Name: f[0], PeriodType: f[1], Start: start, End: end}
		if start.Kind == MonthDay {
			p.StartDay = OrdinalDay(start.Month, start.Day, 0)
		}
		if end.Kind == MonthDay {
			p.EndDay = OrdinalDay(end.Month, end.Day, 0)
		}
		h.TypicalPeriods = append(h.TypicalPeriods, p)
		f = f[4:]
	}
	return nil
}

func (h *EPWHeader) parseGroundTemps(f []string) error {
	if len(f) == 0 {
		return nil
	}
	n, err := strconv.Atoi(f[0])
	if err != nil || n < 0 {
		return fmt.Errorf("set count %q", f[0])
	}
	f = f[1:]
	for i := 0; i < n; i++ {
		if len(f) < 16 {
			return fmt.Errorf("set %d: truncated record", i+1)
		}
		var g GroundTempSet
		if g.Depth, err = strconv.ParseFloat(f[0], 64); err != nil {
			return fmt.Errorf("set %d depth %q: %w", i+1, f[0], err)
		}
		// Soil properties are frequently left blank.
		g.Conductivity = floatOrZero(f[1])
		g.Density = floatOrZero(f[2])
		g.SpecificHeat = floatOrZero(f[3])
		for m := 0; m < 12; m++ {
			if g.Monthly[m], err = strconv.ParseFloat(f[4+m], 64); err != nil {
				return fmt.Errorf("set %d month %d %q: %w", i+1, m+1, f[4+m], err)
			}
		}
		h.GroundTemps = append(h.GroundTemps, g)
		f = f[16:]
	}
	return nil
}

func floatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (h *EPWHeader) parseHolidaysDST(f []string) error {
	if len(f) < 4 {
		return fmt.Errorf("want leap flag, daylight saving dates and holiday count")
	}
	switch strings.ToLower(f[0]) {
	case "yes":
		h.LeapYearObserved = true
	case "no", "":
		h.LeapYearObserved = false
	default:
		return fmt.Errorf("leap year flag %q", f[0])
	}

	if isNoDate(f[1]) != isNoDate(f[2]) {
		return fmt.Errorf("daylight saving start %q and end %q must both be dates or both be 0", f[1], f[2])
	}
	if !isNoDate(f[1]) {
		start, err := ParseDateSpec(f[1])
		if err != nil {
			return fmt.Errorf("daylight saving start: %w", err)
		}
		end, err := ParseDateSpec(f[2])
		if err != nil {
			return fmt.Errorf("daylight saving end: %w", err)
		}
		h.HasDST = true
		h.DST = DSTSpec{Start: start, End: end}
	}

	n, err := strconv.Atoi(f[3])
	if err != nil || n < 0 {
		return fmt.Errorf("holiday count %q", f[3])
	}
	f = f[4:]
	for i := 0; i < n; i++ {
		if len(f) < 2 {
			return fmt.Errorf("holiday %d: truncated record", i+1)
		}
		date, err := ParseDateSpec(f[1])
		if err != nil {
			return fmt.Errorf("holiday %q: %w", f[0], err)
		}
		h.SpecialDays = append(h.SpecialDays, SpecialDaySpec{
			Name:     f[0],
			Date:     date,
			Duration: 1,
			Type:     DayHoliday,
		})
		f = f[2:]
	}
	return nil
}

func isNoDate(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "0" || s == "0/0"
}

func (h *EPWHeader) parseDataPeriods(f []string) error {
	if len(f) < 2 {
		return fmt.Errorf("want period count and records per hour")
	}
	n, err := strconv.Atoi(f[0])
	if err != nil || n < 1 {
		return fmt.Errorf("period count %q", f[0])
	}
	h.RecordsPerHour, err = strconv.Atoi(f[1])
	if err != nil || h.RecordsPerHour < 1 || h.RecordsPerHour > 60 {
		return fmt.Errorf("records per hour %q", f[1])
	}
	f = f[2:]
	for i := 0; i < n; i++ {
		if len(f) < 4 {
			return fmt.Errorf("period %d: truncated record", i+1)
		}
		var dp DataPeriod
		dp.Name = f[0]
		if dp.StartWeekday, err = ParseWeekday(f[1]); err != nil {
			return fmt.Errorf("period %q: %w", dp.Name, err)
		}
		if dp.Start, dp.StartYear, err = parseEPWDate(f[2]); err != nil {
			return fmt.Errorf("period %q start: %w", dp.Name, err)
		}
		if dp.End, dp.EndYear, err = parseEPWDate(f[3]); err != nil {
			return fmt.Errorf("period %q end: %w", dp.Name, err)
		}
		if (dp.StartYear != 0) != (dp.EndYear != 0) {
			return fmt.Errorf("period %q: start and end must both carry a year or neither", dp.Name)
		}
		if dp.Start.Kind != MonthDay || dp.End.Kind != MonthDay {
			return fmt.Errorf("period %q: dates must be literal month/day", dp.Name)
		}
		leapAdd := 0
		if dp.HasYear() {
			leapAdd = LeapAdd(dp.StartYear)
		} else if h.LeapYearObserved {
			leapAdd = 1
		}
		if !ValidMonthDay(dp.Start.Month, dp.Start.Day, leapAdd) {
			return fmt.Errorf("period %q: start %s not valid", dp.Name, dp.Start)
		}
		dp.StartDay = OrdinalDay(dp.Start.Month, dp.Start.Day, leapAdd)
		if dp.HasYear() {
			leapAdd = LeapAdd(dp.EndYear)
		}
		if !ValidMonthDay(dp.End.Month, dp.End.Day, leapAdd) {
			return fmt.Errorf("period %q: end %s not valid", dp.Name, dp.End)
		}
		dp.EndDay = OrdinalDay(dp.End.Month, dp.End.Day, leapAdd)
		h.Periods = append(h.Periods, dp)
		f = f[4:]
	}
	return nil
}

// parseEPWDate reads the date forms used in EPW headers: "m/d", "m/d/y" and
// "y/m/d" (the four digit field is the year), plus the symbolic forms shared
// with project input.
func parseEPWDate(s string) (DateSpec, int, error) {
	raw := strings.TrimSpace(s)
	parts := strings.Split(raw, "/")
	if len(parts) == 3 {
		nums := make([]int, 3)
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return DateSpec{}, 0, fmt.Errorf("date %q: non-numeric field", raw)
			}
			nums[i] = v
		}
		var year, m, d int
		switch {
		case nums[0] > 100:
			year, m, d = nums[0], nums[1], nums[2]
		case nums[2] > 100:
			m, d, year = nums[0], nums[1], nums[2]
		default:
			return DateSpec{}, 0, fmt.Errorf("date %q: no year field", raw)
		}
		if m < 1 || m > 12 || !ValidMonthDay(m, d, LeapAdd(year)) {
			return DateSpec{}, 0, fmt.Errorf("date %q: month/day out of range", raw)
		}
		return DateSpec{Kind: MonthDay, Month: m, Day: d}, year, nil
	}
	ds, err := ParseDateSpec(raw)
	return ds, 0, err
}

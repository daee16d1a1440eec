package weathersim

import (
	"fmt"
	"strconv"
	"strings"
)

// DateKind selects how a DateSpec names a calendar day.
type DateKind int

const (
	// MonthDay is a literal month/day pair.
	MonthDay DateKind = iota
	// NthWeekdayInMonth is "2nd Sunday in April" style.
	NthWeekdayInMonth
	// LastWeekdayInMonth is "Last Sunday in October" style.
	LastWeekdayInMonth
)

// DateSpec is a symbolic date rule. It resolves to a day-of-year only once
// the year's weekday layout is known.
type DateSpec struct {
	Kind    DateKind
	Month   int
	Day     int
	N       int
	Weekday Weekday
}

func (ds DateSpec) String() string {
	switch ds.Kind {
	case NthWeekdayInMonth:
		return fmt.Sprintf("%d%s %s in %s", ds.N, ordinalSuffix(ds.N), ds.Weekday, monthNames[ds.Month-1])
	case LastWeekdayInMonth:
		return fmt.Sprintf("Last %s in %s", ds.Weekday, monthNames[ds.Month-1])
	default:
		return fmt.Sprintf("%d/%d", ds.Month, ds.Day)
	}
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func ordinalSuffix(n int) string {
	switch n {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func monthFromName(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for i, name := range monthNames {
		lower := strings.ToLower(name)
		if s == lower || (len(s) == 3 && s == lower[:3]) {
			return i + 1, true
		}
	}
	return 0, false
}

// ParseDateSpec reads the date formats found in weather file headers and
// project input: "4/1", "April 1", "1 April", "2nd Sunday in April",
// "Last Sunday in October".
func ParseDateSpec(s string) (DateSpec, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return DateSpec{}, fmt.Errorf("empty date")
	}

	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		if len(parts) != 2 {
			return DateSpec{}, fmt.Errorf("date %q: want month/day", raw)
		}
		m, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		d, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return DateSpec{}, fmt.Errorf("date %q: non-numeric month/day", raw)
		}
		if m < 1 || m > 12 || !ValidMonthDay(m, d, 1) {
			return DateSpec{}, fmt.Errorf("date %q: month/day out of range", raw)
		}
		return DateSpec{Kind: MonthDay, Month: m, Day: d}, nil
	}

	fields := strings.Fields(raw)
	lowered := make([]string, len(fields))
	for i, f := range fields {
		lowered[i] = strings.ToLower(f)
	}

	// "<nth> <weekday> in <month>" and "last <weekday> in <month>".
	if len(fields) == 4 && lowered[2] == "in" {
		wd, err := ParseWeekday(fields[1])
		if err != nil {
			return DateSpec{}, fmt.Errorf("date %q: %v", raw, err)
		}
		m, ok := monthFromName(fields[3])
		if !ok {
			return DateSpec{}, fmt.Errorf("date %q: unknown month %q", raw, fields[3])
		}
		if lowered[0] == "last" {
			return DateSpec{Kind: LastWeekdayInMonth, Month: m, Weekday: wd}, nil
		}
		n, err := parseNth(lowered[0])
		if err != nil {
			return DateSpec{}, fmt.Errorf("date %q: %v", raw, err)
		}
		if n == 5 {
			return DateSpec{Kind: LastWeekdayInMonth, Month: m, Weekday: wd}, nil
		}
		return DateSpec{Kind: NthWeekdayInMonth, Month: m, N: n, Weekday: wd}, nil
	}

	// "<month> <day>" in either order.
	if len(fields) == 2 {
		if m, ok := monthFromName(fields[0]); ok {
			d, err := strconv.Atoi(fields[1])
			if err != nil || !ValidMonthDay(m, d, 1) {
				return DateSpec{}, fmt.Errorf("date %q: bad day of month", raw)
			}
			return DateSpec{Kind: MonthDay, Month: m, Day: d}, nil
		}
		if m, ok := monthFromName(fields[1]); ok {
			d, err := strconv.Atoi(fields[0])
			if err != nil || !ValidMonthDay(m, d, 1) {
				return DateSpec{}, fmt.Errorf("date %q: bad day of month", raw)
			}
			return DateSpec{Kind: MonthDay, Month: m, Day: d}, nil
		}
	}

	return DateSpec{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseNth(s string) (int, error) {
	switch s {
	case "1", "1st", "first":
		return 1, nil
	case "2", "2nd", "second":
		return 2, nil
	case "3", "3rd", "third":
		return 3, nil
	case "4", "4th", "fourth":
		return 4, nil
	case "5", "5th", "fifth":
		return 5, nil
	}
	return 0, fmt.Errorf("unknown occurrence %q", s)
}

// Resolve turns the date rule into a day-of-year for a year whose month layout is
// given by wdbm and leapAdd. clamped reports that an NthWeekdayInMonth rule
// asked for an occurrence past the end of the month and the last occurrence
// was used instead.
func (ds DateSpec) Resolve(wdbm [12]Weekday, leapAdd int) (ordinal int, clamped bool, err error) {
	switch ds.Kind {
	case MonthDay:
		if !ValidMonthDay(ds.Month, ds.Day, leapAdd) {
			return 0, false, fmt.Errorf("date %s not valid this year", ds)
		}
		return OrdinalDay(ds.Month, ds.Day, leapAdd), false, nil

	case NthWeekdayInMonth, LastWeekdayInMonth:
		if ds.Month < 1 || ds.Month > 12 {
			return 0, false, fmt.Errorf("date %s: month out of range", ds)
		}
		first := wdbm[ds.Month-1]
		offset := (int(ds.Weekday) - int(first) + 7) % 7
		length := DaysInMonth(ds.Month, leapAdd)
		if ds.Kind == LastWeekdayInMonth {
			day := 1 + offset + 7*((length-1-offset)/7)
			return OrdinalDay(ds.Month, day, leapAdd), false, nil
		}
		day := 1 + offset + 7*(ds.N-1)
		for day > length {
			day -= 7
			clamped = true
		}
		return OrdinalDay(ds.Month, day, leapAdd), clamped, nil
	}
	return 0, false, fmt.Errorf("unknown date kind %d", int(ds.Kind))
}

// WeekdaysByMonth derives the weekday of the first of every month from one
// anchor date. Months before the anchor are filled by walking the same year
// backward, so the table is consistent for the whole year.
func WeekdaysByMonth(startMonth, startDay int, startWeekday Weekday, leapAdd int) [12]Weekday {
	anchor := OrdinalDay(startMonth, startDay, leapAdd)
	jan1 := int(startWeekday) - (anchor-1)%7
	for jan1 < 1 {
		jan1 += 7
	}
	var wdbm [12]Weekday
	for m := 1; m <= 12; m++ {
		first := OrdinalDay(m, 1, leapAdd)
		wdbm[m-1] = Weekday((jan1-1+(first-1))%7 + 1)
	}
	return wdbm
}

// RolloverPolicy controls the weekday layout of repeat cycles.
type RolloverPolicy int

const (
	// RestartSameWeekday starts every cycle on the configured start weekday.
	RestartSameWeekday RolloverPolicy = iota
	// RollForward lets weekdays run on across the year boundary.
	RollForward
)

// RollWeekdays yields the Jan 1 weekday for the year after one of prevYearDays
// days whose Jan 1 fell on prevJan1. Under RestartSameWeekday the caller's
// cycleStart wins unchanged.
func RollWeekdays(policy RolloverPolicy, cycleStart, prevJan1 Weekday, prevYearDays int) Weekday {
	if policy == RestartSameWeekday {
		return cycleStart
	}
	return Weekday((int(prevJan1)-1+prevYearDays)%7 + 1)
}

// ordinalWeekday gives the weekday of a day-of-year given the Jan 1 weekday.
func ordinalWeekday(jan1 Weekday, ordinal int) Weekday {
	return Weekday((int(jan1)-1+(ordinal-1))%7 + 1)
}

// DSTSpec is a daylight saving period as declared in a weather file header or
// project input.
type DSTSpec struct {
	Start DateSpec
	End   DateSpec
}

// DSTRange is a resolved daylight saving span in day-of-year terms. A span
// whose EndDay precedes its StartDay wraps across the year boundary.
type DSTRange struct {
	StartDay int
	EndDay   int
}

// ResolveDaylightSaving resolves spec against the year's weekday layout and
// marks the active table. The previous marking is discarded in full.
func (cs *CalendarState) ResolveDaylightSaving(spec DSTSpec, wdbm [12]Weekday, rep *Reporter) error {
	cs.DSTActive = [367]bool{}
	cs.DSTResolved = false

	start, clamped, err := spec.Start.Resolve(wdbm, cs.LeapAdd)
	if err != nil {
		return fmt.Errorf("daylight saving start: %w", err)
	}
	if clamped {
		rep.Warning("daylight saving start %s: occurrence past month end, using last", spec.Start)
	}
	end, clamped, err := spec.End.Resolve(wdbm, cs.LeapAdd)
	if err != nil {
		return fmt.Errorf("daylight saving end: %w", err)
	}
	if clamped {
		rep.Warning("daylight saving end %s: occurrence past month end, using last", spec.End)
	}

	cs.DST = DSTRange{StartDay: start, EndDay: end}
	cs.DSTResolved = true

	last := 365 + cs.LeapAdd
	if end >= start {
		for d := start; d <= end; d++ {
			cs.DSTActive[d] = true
		}
	} else {
		for d := start; d <= last; d++ {
			cs.DSTActive[d] = true
		}
		for d := 1; d <= end; d++ {
			cs.DSTActive[d] = true
		}
	}
	return nil
}

// SpecialDaySpec is a holiday or custom day declaration.
type SpecialDaySpec struct {
	Name     string
	Date     DateSpec
	Duration int
	Type     DayType
}

// ResolveSpecialDays resolves every declared special day into the day-of-year
// tables. The weekend rule moves a one-day special day landing on Sunday one
// day later and one landing on Saturday two days later. When two declarations
// claim the same day the first wins and the second is reported.
func (cs *CalendarState) ResolveSpecialDays(specs []SpecialDaySpec, wdbm [12]Weekday, applyWeekendRule bool, rep *Reporter) error {
	cs.SpecialDayType = [367]DayType{}
	cs.HolidayIndex = [367]int{}

	jan1 := wdbm[0]
	last := 365 + cs.LeapAdd
	for i, sp := range specs {
		day, clamped, err := sp.Date.Resolve(wdbm, cs.LeapAdd)
		if err != nil {
			return fmt.Errorf("special day %q: %w", sp.Name, err)
		}
		if clamped {
			rep.Warning("special day %q date %s: occurrence past month end, using last", sp.Name, sp.Date)
		}
		dur := sp.Duration
		if dur < 1 {
			dur = 1
		}
		if applyWeekendRule && dur == 1 {
			switch ordinalWeekday(jan1, day) {
			case Sunday:
				day++
			case Saturday:
				day += 2
			}
			if day > last {
				day -= last
			}
		}
		for j := 0; j < dur; j++ {
			d := day + j
			for d > last {
				d -= last
			}
			if cs.SpecialDayType[d] != 0 {
				rep.Warning("special day %q overlaps an earlier declaration on day %d, keeping the first", sp.Name, d)
				continue
			}
			cs.SpecialDayType[d] = sp.Type
			cs.HolidayIndex[d] = i + 1
		}
	}
	return nil
}

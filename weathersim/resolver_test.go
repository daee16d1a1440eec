package weathersim

import (
	"testing"

	"github.com/hhkbp2/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietReporter() *Reporter {
	rep := NewReporter()
	rep.SetLevel(logging.LevelCritical)
	return rep
}

func Test_ParseDateSpec_MonthDay(t *testing.T) {
	ds, err := ParseDateSpec("4/1")
	require.NoError(t, err)
	assert.Equal(t, DateSpec{Kind: MonthDay, Month: 4, Day: 1}, ds)

	ds, err = ParseDateSpec("April 1")
	require.NoError(t, err)
	assert.Equal(t, DateSpec{Kind: MonthDay, Month: 4, Day: 1}, ds)

	ds, err = ParseDateSpec("1 April")
	require.NoError(t, err)
	assert.Equal(t, DateSpec{Kind: MonthDay, Month: 4, Day: 1}, ds)

	ds, err = ParseDateSpec("dec 25")
	require.NoError(t, err)
	assert.Equal(t, DateSpec{Kind: MonthDay, Month: 12, Day: 25}, ds)
}

func Test_ParseDateSpec_WeekdayRules(t *testing.T) {
	ds, err := ParseDateSpec("2nd Sunday in April")
	require.NoError(t, err)
	assert.Equal(t, DateSpec{Kind: NthWeekdayInMonth, Month: 4, N: 2, Weekday: Sunday}, ds)

	ds, err = ParseDateSpec("first monday in september")
	require.NoError(t, err)
	assert.Equal(t, DateSpec{Kind: NthWeekdayInMonth, Month: 9, N: 1, Weekday: Monday}, ds)

	ds, err = ParseDateSpec("Last Sunday in October")
	require.NoError(t, err)
	assert.Equal(t, DateSpec{Kind: LastWeekdayInMonth, Month: 10, Weekday: Sunday}, ds)

	// A fifth occurrence is read as "last".
	ds, err = ParseDateSpec("5th Friday in May")
	require.NoError(t, err)
	assert.Equal(t, DateSpec{Kind: LastWeekdayInMonth, Month: 5, Weekday: Friday}, ds)
}

func Test_ParseDateSpec_Rejects(t *testing.T) {
	for _, bad := range []string{"", "13/1", "2/30", "Foo 1", "9th Monday in May", "Monday in May"} {
		_, err := ParseDateSpec(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func Test_WeekdaysByMonth_MatchesCalendar(t *testing.T) {
	// Anchors at the start, middle, and end of the year must all produce
	// the layout the calendar gives for the first of every month.
	anchors := []struct {
		year, month, day int
	}{
		{2023, 1, 1},
		{2023, 7, 1},
		{2023, 12, 25},
		{2024, 3, 1}, // past Feb 29, exercises the backward fill
		{2024, 1, 1},
	}
	for _, a := range anchors {
		leapAdd := LeapAdd(a.year)
		wdbm := WeekdaysByMonth(a.month, a.day, DayOfWeek(a.year, a.month, a.day), leapAdd)
		for m := 1; m <= 12; m++ {
			assert.Equal(t, DayOfWeek(a.year, m, 1), wdbm[m-1],
				"anchor %d-%d-%d month %d", a.year, a.month, a.day, m)
		}
	}
}

func Test_RollWeekdays(t *testing.T) {
	// Restart keeps the configured start weekday.
	assert.Equal(t, Wednesday, RollWeekdays(RestartSameWeekday, Wednesday, Sunday, 365))

	// Rolling forward across 2023 (365 days, Jan 1 Sunday) lands 2024 on Monday.
	assert.Equal(t, Monday, RollWeekdays(RollForward, Sunday, Sunday, 365))
	// Across leap 2024 (366 days, Jan 1 Monday) lands 2025 on Wednesday.
	assert.Equal(t, Wednesday, RollWeekdays(RollForward, Sunday, Monday, 366))
}

func Test_DateSpec_Resolve(t *testing.T) {
	wdbm := WeekdaysByMonth(1, 1, Sunday, 0) // 2023 layout

	ds := DateSpec{Kind: NthWeekdayInMonth, Month: 4, N: 2, Weekday: Sunday}
	day, clamped, err := ds.Resolve(wdbm, 0)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, OrdinalDay(4, 9, 0), day) // 2023-04-09

	ds = DateSpec{Kind: LastWeekdayInMonth, Month: 10, Weekday: Sunday}
	day, clamped, err = ds.Resolve(wdbm, 0)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, OrdinalDay(10, 29, 0), day) // 2023-10-29

	ds = DateSpec{Kind: NthWeekdayInMonth, Month: 11, N: 4, Weekday: Thursday}
	day, _, err = ds.Resolve(wdbm, 0)
	require.NoError(t, err)
	assert.Equal(t, OrdinalDay(11, 23, 0), day) // Thanksgiving 2023

	// An impossible fifth occurrence falls back to the fourth and reports it.
	ds = DateSpec{Kind: NthWeekdayInMonth, Month: 4, N: 5, Weekday: Monday}
	day, clamped, err = ds.Resolve(wdbm, 0)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, OrdinalDay(4, 24, 0), day)

	// Feb 29 only resolves in leap years.
	ds = DateSpec{Kind: MonthDay, Month: 2, Day: 29}
	_, _, err = ds.Resolve(wdbm, 0)
	assert.Error(t, err)
	_, _, err = ds.Resolve(WeekdaysByMonth(1, 1, Monday, 1), 1)
	assert.NoError(t, err)
}

func Test_ResolveDaylightSaving_Contiguous(t *testing.T) {
	var cs CalendarState
	cs.Reset(2023)
	wdbm := WeekdaysByMonth(1, 1, Sunday, 0)

	spec := DSTSpec{
		Start: DateSpec{Kind: NthWeekdayInMonth, Month: 3, N: 2, Weekday: Sunday},
		End:   DateSpec{Kind: NthWeekdayInMonth, Month: 11, N: 1, Weekday: Sunday},
	}
	require.NoError(t, cs.ResolveDaylightSaving(spec, wdbm, quietReporter()))
	require.True(t, cs.DSTResolved)

	start := OrdinalDay(3, 12, 0) // 2023-03-12
	end := OrdinalDay(11, 5, 0)   // 2023-11-05
	assert.Equal(t, DSTRange{StartDay: start, EndDay: end}, cs.DST)

	assert.False(t, cs.DSTActive[start-1])
	assert.True(t, cs.DSTActive[start])
	assert.True(t, cs.DSTActive[OrdinalDay(6, 15, 0)])
	assert.True(t, cs.DSTActive[end])
	assert.False(t, cs.DSTActive[end+1])
	assert.False(t, cs.DSTActive[OrdinalDay(1, 15, 0)])
	assert.False(t, cs.DSTActive[OrdinalDay(12, 25, 0)])
}

func Test_ResolveDaylightSaving_WrapsYearEnd(t *testing.T) {
	var cs CalendarState
	cs.Reset(2023)
	wdbm := WeekdaysByMonth(1, 1, Sunday, 0)

	// Southern hemisphere style: October through March.
	spec := DSTSpec{
		Start: DateSpec{Kind: MonthDay, Month: 10, Day: 1},
		End:   DateSpec{Kind: MonthDay, Month: 3, Day: 31},
	}
	require.NoError(t, cs.ResolveDaylightSaving(spec, wdbm, quietReporter()))

	assert.True(t, cs.DSTActive[OrdinalDay(12, 25, 0)])
	assert.True(t, cs.DSTActive[OrdinalDay(1, 15, 0)])
	assert.True(t, cs.DSTActive[365])
	assert.True(t, cs.DSTActive[1])
	assert.False(t, cs.DSTActive[OrdinalDay(6, 15, 0)])
	assert.False(t, cs.DSTActive[OrdinalDay(9, 30, 0)])
	assert.True(t, cs.DSTActive[OrdinalDay(10, 1, 0)])
	assert.True(t, cs.DSTActive[OrdinalDay(3, 31, 0)])
	assert.False(t, cs.DSTActive[OrdinalDay(4, 1, 0)])
}

func Test_ResolveSpecialDays_WeekendRule(t *testing.T) {
	var cs CalendarState
	cs.Reset(2023)
	wdbm := WeekdaysByMonth(1, 1, Sunday, 0)

	specs := []SpecialDaySpec{
		{Name: "New Years Day", Date: DateSpec{Kind: MonthDay, Month: 1, Day: 1}, Duration: 1, Type: DayHoliday},
		{Name: "Independence Day", Date: DateSpec{Kind: MonthDay, Month: 7, Day: 1}, Duration: 1, Type: DayHoliday},
		{Name: "Christmas", Date: DateSpec{Kind: MonthDay, Month: 12, Day: 25}, Duration: 1, Type: DayHoliday},
	}

	// Without the rule the declared dates are marked as-is.
	require.NoError(t, cs.ResolveSpecialDays(specs, wdbm, false, quietReporter()))
	assert.Equal(t, DayHoliday, cs.SpecialDayType[1])
	assert.Equal(t, DayHoliday, cs.SpecialDayType[OrdinalDay(7, 1, 0)])

	// 2023-01-01 is a Sunday, 2023-07-01 a Saturday: both observations move
	// to the following Monday.
	require.NoError(t, cs.ResolveSpecialDays(specs, wdbm, true, quietReporter()))
	assert.Equal(t, DayType(0), cs.SpecialDayType[1])
	assert.Equal(t, DayHoliday, cs.SpecialDayType[2])
	assert.Equal(t, DayType(0), cs.SpecialDayType[OrdinalDay(7, 1, 0)])
	assert.Equal(t, DayHoliday, cs.SpecialDayType[OrdinalDay(7, 3, 0)])
	// 2023-12-25 is a Monday and stays put.
	assert.Equal(t, DayHoliday, cs.SpecialDayType[OrdinalDay(12, 25, 0)])

	assert.Equal(t, 1, cs.HolidayIndex[2])
	assert.Equal(t, 2, cs.HolidayIndex[OrdinalDay(7, 3, 0)])
	assert.Equal(t, 3, cs.HolidayIndex[OrdinalDay(12, 25, 0)])
}

func Test_ResolveSpecialDays_DurationAndOverlap(t *testing.T) {
	var cs CalendarState
	cs.Reset(2023)
	wdbm := WeekdaysByMonth(1, 1, Sunday, 0)
	rep := quietReporter()

	specs := []SpecialDaySpec{
		{Name: "Shutdown", Date: DateSpec{Kind: MonthDay, Month: 12, Day: 30}, Duration: 3, Type: DayCustom1},
		{Name: "Clash", Date: DateSpec{Kind: MonthDay, Month: 12, Day: 31}, Duration: 1, Type: DayHoliday},
	}
	require.NoError(t, cs.ResolveSpecialDays(specs, wdbm, false, rep))

	// Three days marked, wrapping across the year end.
	assert.Equal(t, DayCustom1, cs.SpecialDayType[OrdinalDay(12, 30, 0)])
	assert.Equal(t, DayCustom1, cs.SpecialDayType[365])
	assert.Equal(t, DayCustom1, cs.SpecialDayType[1])

	// The clashing declaration loses and is reported.
	assert.Equal(t, DayCustom1, cs.SpecialDayType[365])
	assert.Equal(t, 1, cs.HolidayIndex[365])
	warnings, _ := rep.Counts()
	assert.Equal(t, 1, warnings)
}

func Test_ResolveSpecialDays_Overwrites(t *testing.T) {
	var cs CalendarState
	cs.Reset(2023)
	wdbm := WeekdaysByMonth(1, 1, Sunday, 0)

	first := []SpecialDaySpec{
		{Name: "A", Date: DateSpec{Kind: MonthDay, Month: 5, Day: 1}, Duration: 1, Type: DayHoliday},
	}
	require.NoError(t, cs.ResolveSpecialDays(first, wdbm, false, quietReporter()))
	assert.Equal(t, DayHoliday, cs.SpecialDayType[OrdinalDay(5, 1, 0)])

	second := []SpecialDaySpec{
		{Name: "B", Date: DateSpec{Kind: MonthDay, Month: 6, Day: 1}, Duration: 1, Type: DayCustom2},
	}
	require.NoError(t, cs.ResolveSpecialDays(second, wdbm, false, quietReporter()))
	assert.Equal(t, DayType(0), cs.SpecialDayType[OrdinalDay(5, 1, 0)])
	assert.Equal(t, DayCustom2, cs.SpecialDayType[OrdinalDay(6, 1, 0)])
}

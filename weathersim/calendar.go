package weathersim

import (
	"fmt"
	"strings"
)

// Calendar math for the simulated year: Gregorian/Julian conversion, weekday
// determination and ordinal-day arithmetic. Everything here is pure integer
// math over the proleptic-free Gregorian calendar (years 1583 and later).

// Weekday is an ordinal day of week, Sunday = 1 through Saturday = 7.
type Weekday int

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (w Weekday) String() string {
	if w < Sunday || w > Saturday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w-1]
}

// Next returns the weekday n days after w.
func (w Weekday) Next(n int) Weekday {
	return Weekday((int(w)-1+n)%7 + 1)
}

// IsWeekend reports whether w falls on Saturday or Sunday.
func (w Weekday) IsWeekend() bool {
	return w == Saturday || w == Sunday
}

// ParseWeekday accepts full English day names, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range weekdayNames {
		if strings.EqualFold(s, name) {
			return Weekday(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday name %q", s)
}

// firstGregorianYear bounds the conversions below: the Gregorian reform
// calendar is not projected backwards.
const firstGregorianYear = 1583

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// cumulative days before each month, non-leap convention
var daysBeforeMonth = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// IsLeapYear implements the Gregorian rule: divisible by 4, except century
// years not divisible by 400.
func IsLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 == 0 && year%400 != 0 {
		return false
	}
	return true
}

// LeapAdd returns the day-of-year offset (0 or 1) contributed by February 29.
func LeapAdd(year int) int {
	if IsLeapYear(year) {
		return 1
	}
	return 0
}

// DaysInMonth returns the length of month (1..12) under the given leap-day
// convention (leapAdd 0 or 1).
func DaysInMonth(month, leapAdd int) int {
	if month == 2 {
		return monthLengths[1] + leapAdd
	}
	return monthLengths[month-1]
}

// ValidMonthDay reports whether the month/day combination exists in a year
// with the given leapAdd. Day 29 of February is valid only when leapAdd is 1.
func ValidMonthDay(month, day, leapAdd int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= DaysInMonth(month, leapAdd)
}

// OrdinalDay returns the 1-based day of year for month/day. leapAdd shifts
// days after February 28 by one when the simulated year has a leap day. The
// combination is not validated here; callers gate on ValidMonthDay first.
func OrdinalDay(month, day, leapAdd int) int {
	ord := daysBeforeMonth[month-1] + day
	if month > 2 {
		ord += leapAdd
	}
	return ord
}

// MonthDayFromOrdinal is the inverse of OrdinalDay.
func MonthDayFromOrdinal(ordinal, leapAdd int) (month, day int) {
	rem := ordinal
	for m := 1; m <= 12; m++ {
		n := DaysInMonth(m, leapAdd)
		if rem <= n {
			return m, rem
		}
		rem -= n
	}
	// past December 31: clamp, callers validate ordinals beforehand
	return 12, 31
}

// JulianDay converts a Gregorian calendar date to its Julian day number with
// the Fliegel-Van Flandern integer algorithm. Dates before 1583 and invalid
// month/day combinations are rejected.
func JulianDay(year, month, day int) (int, error) {
	if year < firstGregorianYear {
		return 0, fmt.Errorf("year %d precedes the Gregorian calendar (min %d)", year, firstGregorianYear)
	}
	if !ValidMonthDay(month, day, LeapAdd(year)) {
		return 0, fmt.Errorf("invalid date %d-%02d-%02d", year, month, day)
	}
	a := (month - 14) / 12
	jdn := (1461*(year+4800+a))/4 +
		(367*(month-2-12*a))/12 -
		(3*((year+4900+a)/100))/4 +
		day - 32075
	return jdn, nil
}

// GregorianDate converts a Julian day number back to year/month/day. Together
// with JulianDay it round-trips for every valid date from 1583 on.
func GregorianDate(jdn int) (year, month, day int) {
	l := jdn + 68569
	n := (4 * l) / 146097
	l = l - (146097*n+3)/4
	i := (4000 * (l + 1)) / 1461001
	l = l - (1461*i)/4 + 31
	j := (80 * l) / 2447
	day = l - (2447*j)/80
	l = j / 11
	month = j + 2 - 12*l
	year = 100*(n-49) + i + l
	return year, month, day
}

// DayOfWeek computes the weekday of a Gregorian date with Zeller's
// congruence.
func DayOfWeek(year, month, day int) Weekday {
	y := year
	m := month
	if m <= 2 {
		m += 12
		y--
	}
	k := y % 100
	j := y / 100
	h := (day + 13*(m+1)/5 + k + k/4 + j/4 + 5*j) % 7
	// Zeller numbers Saturday 0, Sunday 1, ... Friday 6.
	return Weekday((h+6)%7 + 1)
}

// WeekdayFromJulian derives the weekday directly from a Julian day number.
// It must agree with DayOfWeek for every date both accept.
func WeekdayFromJulian(jdn int) Weekday {
	return Weekday((jdn+1)%7 + 1)
}

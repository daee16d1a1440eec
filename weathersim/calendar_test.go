package weathersim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_JulianDay_RoundTrip(t *testing.T) {
	// every day of a leap and a non-leap year, plus the calendar floor
	for _, year := range []int{1583, 1900, 2000, 2023, 2024} {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= DaysInMonth(month, LeapAdd(year)); day++ {
				jdn, err := JulianDay(year, month, day)
				require.NoError(t, err)

				y, m, d := GregorianDate(jdn)
				assert.Equal(t, year, y)
				assert.Equal(t, month, m)
				assert.Equal(t, day, d)
			}
		}
	}
}

func Test_JulianDay_KnownEpochs(t *testing.T) {
	// JDN 2451545 is 2000-01-01 (the J2000 epoch)
	jdn, err := JulianDay(2000, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2451545, jdn)

	// consecutive days differ by exactly one
	next, err := JulianDay(2000, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, jdn+1, next)

	// year boundary
	eve, err := JulianDay(1999, 12, 31)
	require.NoError(t, err)
	assert.Equal(t, jdn-1, eve)
}

func Test_JulianDay_RejectsPreGregorian(t *testing.T) {
	_, err := JulianDay(1582, 10, 4)
	assert.Error(t, err)
}

func Test_JulianDay_RejectsInvalidDates(t *testing.T) {
	_, err := JulianDay(2023, 2, 29)
	assert.Error(t, err)

	_, err = JulianDay(2024, 4, 31)
	assert.Error(t, err)

	_, err = JulianDay(2024, 13, 1)
	assert.Error(t, err)
}

func Test_DayOfWeek_KnownDates(t *testing.T) {
	assert.Equal(t, Saturday, DayOfWeek(2000, 1, 1))
	assert.Equal(t, Sunday, DayOfWeek(2023, 1, 1))
	assert.Equal(t, Monday, DayOfWeek(2024, 1, 1))
	assert.Equal(t, Thursday, DayOfWeek(1970, 1, 1))
	// leap day 2024
	assert.Equal(t, Thursday, DayOfWeek(2024, 2, 29))
}

func Test_DayOfWeek_AgreesWithJulian(t *testing.T) {
	// Zeller and the JDN-derived weekday must agree everywhere
	for _, year := range []int{1583, 1999, 2000, 2024, 2100} {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= DaysInMonth(month, LeapAdd(year)); day++ {
				jdn, err := JulianDay(year, month, day)
				require.NoError(t, err)
				assert.Equal(t, DayOfWeek(year, month, day), WeekdayFromJulian(jdn),
					"mismatch at %d-%02d-%02d", year, month, day)
			}
		}
	}
}

func Test_IsLeapYear(t *testing.T) {
	assert.False(t, IsLeapYear(1900)) // century not divisible by 400
	assert.True(t, IsLeapYear(2000))  // divisible by 400
	assert.True(t, IsLeapYear(2024))
	assert.False(t, IsLeapYear(2023))
	assert.False(t, IsLeapYear(2100))
}

func Test_OrdinalDay(t *testing.T) {
	assert.Equal(t, 1, OrdinalDay(1, 1, 0))
	assert.Equal(t, 59, OrdinalDay(2, 28, 0))
	assert.Equal(t, 60, OrdinalDay(3, 1, 0))
	assert.Equal(t, 365, OrdinalDay(12, 31, 0))

	// leap convention shifts everything after Feb 28
	assert.Equal(t, 60, OrdinalDay(2, 29, 1))
	assert.Equal(t, 61, OrdinalDay(3, 1, 1))
	assert.Equal(t, 366, OrdinalDay(12, 31, 1))
}

func Test_MonthDayFromOrdinal_Inverts(t *testing.T) {
	for _, leapAdd := range []int{0, 1} {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= DaysInMonth(month, leapAdd); day++ {
				m, d := MonthDayFromOrdinal(OrdinalDay(month, day, leapAdd), leapAdd)
				assert.Equal(t, month, m)
				assert.Equal(t, day, d)
			}
		}
	}
}

func Test_ValidMonthDay(t *testing.T) {
	assert.True(t, ValidMonthDay(2, 29, 1))
	assert.False(t, ValidMonthDay(2, 29, 0))
	assert.False(t, ValidMonthDay(4, 31, 0))
	assert.False(t, ValidMonthDay(0, 1, 0))
	assert.False(t, ValidMonthDay(1, 0, 0))
	assert.True(t, ValidMonthDay(12, 31, 0))
}

func Test_ParseWeekday(t *testing.T) {
	w, err := ParseWeekday("monday")
	require.NoError(t, err)
	assert.Equal(t, Monday, w)

	w, err = ParseWeekday("Sunday")
	require.NoError(t, err)
	assert.Equal(t, Sunday, w)

	_, err = ParseWeekday("Moonday")
	assert.Error(t, err)
}

func Test_Weekday_Next(t *testing.T) {
	assert.Equal(t, Monday, Sunday.Next(1))
	assert.Equal(t, Sunday, Saturday.Next(1))
	assert.Equal(t, Saturday, Saturday.Next(7))
	assert.Equal(t, Tuesday, Sunday.Next(9))
}

package weathersim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RunLog_ToCSV(t *testing.T) {
	l := NewRunLog("Annual", 4)
	l.Append(CurrentWeather{
		Year: 2006, Month: 1, Day: 1, Hour: 1, TimeStep: 1,
		DayType:    DayType(Sunday),
		OutDryBulb: 10.1, OutRelHum: 90, WindDir: 230,
		IsRain: true, LiquidPrecip: 0.5,
	}, 12.25)
	l.Append(CurrentWeather{
		Year: 2006, Month: 1, Day: 1, Hour: 24, TimeStep: 4,
		DayType:    DayType(Sunday),
		OutDryBulb: 12.4, SunUp: false,
	}, 12.25)

	var buf bytes.Buffer
	l.ToCSV(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.True(t, strings.HasPrefix(lines[0], "date,daytype,dst,drybulb,"))
	assert.Contains(t, lines[0], ",mains")

	assert.True(t, strings.HasPrefix(lines[1], "2006-01-01 00:15,Sunday,0,10.1,"))
	assert.Contains(t, lines[1], ",1,0,0.5,12.25")

	assert.True(t, strings.HasPrefix(lines[2], "2006-01-01 24:00,Sunday,0,12.4,"))
}

func Test_RunLog_ToDailySummary(t *testing.T) {
	l := NewRunLog("Annual", 4)
	l.Append(CurrentWeather{
		Year: 2006, Month: 1, Day: 1, Hour: 10, TimeStep: 1,
		OutDryBulb: 10.0, BeamSolarRad: 100, SolarAltSin: 0.5, DifSolarRad: 50,
		IsRain: true,
	}, 0)
	l.Append(CurrentWeather{
		Year: 2006, Month: 1, Day: 1, Hour: 10, TimeStep: 2,
		OutDryBulb: 20.0, BeamSolarRad: 100, SolarAltSin: 0.5, DifSolarRad: 50,
	}, 0)
	l.Append(CurrentWeather{
		Year: 2006, Month: 1, Day: 2, Hour: 1, TimeStep: 1,
		OutDryBulb: 5.0,
	}, 0)

	var buf bytes.Buffer
	l.ToDailySummary(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "date,drybulb_min,drybulb_max,drybulb_mean,global_wh,rain_hours", lines[0])
	assert.Equal(t, "2006-01-01,10.00,20.00,15.00,50.00,0.25", lines[1])
	assert.Equal(t, "2006-01-02,5.00,5.00,5.00,0.00,0.00", lines[2])
}

func Test_RunLog_ToDailySummary_Empty(t *testing.T) {
	l := NewRunLog("Empty", 4)
	var buf bytes.Buffer
	l.ToDailySummary(&buf)
	assert.Equal(t, "date,drybulb_min,drybulb_max,drybulb_mean,global_wh,rain_hours\n", buf.String())
}

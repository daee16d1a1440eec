package weathersim

import (
	"bytes"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// RunLog collects the per-timestep weather state of one simulation run for
// export. Rows are appended in simulation order; environments may follow
// each other in the same log.
type RunLog struct {
	Title        string
	StepsPerHour int

	rows []logRow
}

type logRow struct {
	cw    CurrentWeather
	mains float64
}

func NewRunLog(title string, stepsPerHour int) *RunLog {
	return &RunLog{Title: title, StepsPerHour: stepsPerHour}
}

// Append records the engine state for one timestep.
func (l *RunLog) Append(cw CurrentWeather, mainsTemp float64) {
	l.rows = append(l.rows, logRow{cw: cw, mains: mainsTemp})
}

func (l *RunLog) Len() int { return len(l.rows) }

// timeLabel renders the end-of-interval timestamp, "24:00" closing the day.
func (l *RunLog) timeLabel(cw *CurrentWeather) string {
	totalMin := (cw.Hour-1)*60 + cw.TimeStep*(60/l.StepsPerHour)
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", cw.Year, cw.Month, cw.Day, totalMin/60, totalMin%60)
}

// ToCSV writes the log as CSV, one row per timestep.
func (l *RunLog) ToCSV(buf *bytes.Buffer) {
	buf.WriteString("date")
	buf.WriteString(",daytype")
	buf.WriteString(",dst")
	buf.WriteString(",drybulb")
	buf.WriteString(",dewpoint")
	buf.WriteString(",wetbulb")
	buf.WriteString(",relhum")
	buf.WriteString(",humratio")
	buf.WriteString(",pressure")
	buf.WriteString(",enthalpy")
	buf.WriteString(",airdensity")
	buf.WriteString(",windspeed")
	buf.WriteString(",winddir")
	buf.WriteString(",beam")
	buf.WriteString(",diffuse")
	buf.WriteString(",gndsolar")
	buf.WriteString(",skytemp")
	buf.WriteString(",horiz_ir")
	buf.WriteString(",sun_up")
	buf.WriteString(",rain")
	buf.WriteString(",snow")
	buf.WriteString(",liquidprecip")
	buf.WriteString(",mains")
	buf.WriteString("\n")

	writeFloat := func(v float64) {
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	writeBool := func(v bool) {
		if v {
			buf.WriteString(",1")
		} else {
			buf.WriteString(",0")
		}
	}
	for i := range l.rows {
		cw := &l.rows[i].cw
		buf.WriteString(l.timeLabel(cw))
		buf.WriteString(",")
		buf.WriteString(cw.DayType.String())
		writeBool(cw.DSTActive)
		writeFloat(cw.OutDryBulb)
		writeFloat(cw.OutDewPoint)
		writeFloat(cw.OutWetBulb)
		writeFloat(cw.OutRelHum)
		writeFloat(cw.OutHumRat)
		writeFloat(cw.OutBaroPress)
		writeFloat(cw.OutEnthalpy)
		writeFloat(cw.OutAirDens)
		writeFloat(cw.WindSpeed)
		writeFloat(cw.WindDir)
		writeFloat(cw.BeamSolarRad)
		writeFloat(cw.DifSolarRad)
		writeFloat(cw.GndSolarRad)
		writeFloat(cw.SkyTemp)
		writeFloat(cw.HorizIRSky)
		writeBool(cw.SunUp)
		writeBool(cw.IsRain)
		writeBool(cw.IsSnow)
		writeFloat(cw.LiquidPrecip)
		writeFloat(l.rows[i].mains)
		buf.WriteString("\n")
	}
}

// ToDailySummary writes one row per simulated day: dry-bulb extremes and
// mean, global horizontal solar in Wh/m2, and hours with rain.
func (l *RunLog) ToDailySummary(buf *bytes.Buffer) {
	buf.WriteString("date,drybulb_min,drybulb_max,drybulb_mean,global_wh,rain_hours\n")
	if len(l.rows) == 0 {
		return
	}

	writeDay := func(cw *CurrentWeather, temps []float64, solar float64, rainSteps int) {
		buf.WriteString(fmt.Sprintf("%04d-%02d-%02d", cw.Year, cw.Month, cw.Day))
		cols := []float64{
			floats.Min(temps),
			floats.Max(temps),
			seriesMean(temps),
			solar,
			float64(rainSteps) / float64(l.StepsPerHour),
		}
		for _, v := range cols {
			buf.WriteString(",")
			buf.WriteString(strconv.FormatFloat(v, 'f', 2, 64))
		}
		buf.WriteString("\n")
	}

	var temps []float64
	solar, rainSteps := 0.0, 0
	day := &l.rows[0].cw
	for i := range l.rows {
		cw := &l.rows[i].cw
		if cw.Year != day.Year || cw.Month != day.Month || cw.Day != day.Day {
			writeDay(day, temps, solar, rainSteps)
			day = cw
			temps = temps[:0]
			solar, rainSteps = 0.0, 0
		}
		temps = append(temps, cw.OutDryBulb)
		solar += (cw.BeamSolarRad*cw.SolarAltSin + cw.DifSolarRad) / float64(l.StepsPerHour)
		if cw.IsRain {
			rainSteps++
		}
	}
	writeDay(day, temps, solar, rainSteps)
}

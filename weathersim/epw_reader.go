package weathersim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseOutcome classifies a weather data line. Field-level problems are not
// outcomes: an unreadable numeric field becomes its missing sentinel and is
// handled by the substitution policy downstream.
type ParseOutcome int

const (
	// ParseOK means the line yielded a usable record.
	ParseOK ParseOutcome = iota
	// ParseBadDate means the year/month/day/hour group is unreadable. The
	// reader cannot trust its position in the file past this point.
	ParseBadDate
	// ParseShortLine means the line ends before the wind speed field.
	ParseShortLine
)

// WeatherRecord is one data line of the weather file, raw apart from the
// rain and snow flags derived from the present weather codes.
type WeatherRecord struct {
	Year, Month, Day int
	Hour             int // 1..24
	Minute           int

	DryBulb  float64 // C
	DewPoint float64 // C
	RelHum   float64 // %
	Pressure float64 // Pa

	ExtHorizRad float64 // Wh/m2
	ExtDirRad   float64 // Wh/m2
	HorizIR     float64 // Wh/m2

	GlobalHorizRad float64 // Wh/m2
	DirNormRad     float64 // Wh/m2
	DifHorizRad    float64 // Wh/m2

	GlobalHorizIllum float64 // lux
	DirNormIllum     float64 // lux
	DifHorizIllum    float64 // lux
	ZenithLum        float64 // cd/m2

	WindDir   float64 // degrees
	WindSpeed float64 // m/s

	TotalSkyCover  float64 // tenths
	OpaqueSkyCover float64 // tenths
	Visibility     float64 // km
	Ceiling        float64 // m

	WeatherObs   int
	WeatherCodes string

	PrecipWater       float64 // mm
	AerosolDepth      float64 // thousandths
	SnowDepth         float64 // cm
	DaysLastSnow      float64
	Albedo            float64
	LiquidPrecipDepth float64 // mm
	LiquidPrecipRate  float64 // hr

	IsRain bool
	IsSnow bool
}

// ParseWeatherLine splits one data line. The data source flags field is
// ignored. Fields after wind speed may be absent and default to their
// missing sentinels so the substitution policy treats them uniformly.
func ParseWeatherLine(line string) (WeatherRecord, ParseOutcome) {
	f := splitEPWLine(line)
	var rec WeatherRecord
	if len(f) < 22 {
		return rec, ParseShortLine
	}

	var err error
	if rec.Year, err = strconv.Atoi(f[0]); err != nil {
		return rec, ParseBadDate
	}
	if rec.Month, err = strconv.Atoi(f[1]); err != nil {
		return rec, ParseBadDate
	}
	if rec.Day, err = strconv.Atoi(f[2]); err != nil {
		return rec, ParseBadDate
	}
	if rec.Hour, err = strconv.Atoi(f[3]); err != nil {
		return rec, ParseBadDate
	}
	if rec.Month < 1 || rec.Month > 12 || !ValidMonthDay(rec.Month, rec.Day, 1) || rec.Hour < 1 || rec.Hour > 24 {
		return rec, ParseBadDate
	}
	rec.Minute, _ = strconv.Atoi(f[4])
	// f[5] holds the data source and uncertainty flags; skipped.

	rec.DryBulb = floatOr(f[6], missingDryBulbAt)
	rec.DewPoint = floatOr(f[7], missingDewPointAt)
	rec.RelHum = floatOr(f[8], missingRelHumAt)
	rec.Pressure = floatOr(f[9], missingPressureAt)
	rec.ExtHorizRad = floatOr(f[10], missingRadiation)
	rec.ExtDirRad = floatOr(f[11], missingRadiation)
	rec.HorizIR = floatOr(f[12], missingRadiation)
	rec.GlobalHorizRad = floatOr(f[13], missingRadiation)
	rec.DirNormRad = floatOr(f[14], missingRadiation)
	rec.DifHorizRad = floatOr(f[15], missingRadiation)
	rec.GlobalHorizIllum = floatOr(f[16], 999999.0)
	rec.DirNormIllum = floatOr(f[17], 999999.0)
	rec.DifHorizIllum = floatOr(f[18], 999999.0)
	rec.ZenithLum = floatOr(f[19], 99999.0)
	rec.WindDir = floatOr(f[20], missingWindAt)
	rec.WindSpeed = floatOr(f[21], missingWindAt)

	rec.TotalSkyCover = optFloat(f, 22, missingSkyCvrAt)
	rec.OpaqueSkyCover = optFloat(f, 23, missingSkyCvrAt)
	rec.Visibility = optFloat(f, 24, missingVisAt)
	rec.Ceiling = optFloat(f, 25, missingCeilingAt)
	rec.WeatherObs = optInt(f, 26, 9)
	rec.WeatherCodes = optString(f, 27, "999999999")
	rec.PrecipWater = optFloat(f, 28, missingPrecipAt)
	rec.AerosolDepth = optFloat(f, 29, missingAerosolAt)
	rec.SnowDepth = optFloat(f, 30, missingSnowAt)
	rec.DaysLastSnow = optFloat(f, 31, missingDaysSnowAt)
	rec.Albedo = optFloat(f, 32, missingAlbedoAt)
	rec.LiquidPrecipDepth = optFloat(f, 33, missingLiqPrecAt)
	rec.LiquidPrecipRate = optFloat(f, 34, 99.0)

	rec.IsRain, rec.IsSnow = deriveWeatherFlags(rec.WeatherObs, rec.WeatherCodes)
	return rec, ParseOK
}

func floatOr(s string, sentinel float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return sentinel
	}
	return v
}

func optFloat(f []string, i int, sentinel float64) float64 {
	if i >= len(f) || strings.TrimSpace(f[i]) == "" {
		return sentinel
	}
	return floatOr(f[i], sentinel)
}

func optInt(f []string, i, sentinel int) int {
	if i >= len(f) {
		return sentinel
	}
	v, err := strconv.Atoi(strings.TrimSpace(f[i]))
	if err != nil {
		return sentinel
	}
	return v
}

func optString(f []string, i int, def string) string {
	if i >= len(f) || strings.TrimSpace(f[i]) == "" {
		return def
	}
	return strings.TrimSpace(f[i])
}

// deriveWeatherFlags reads the packed present weather codes. The nine
// positions cover phenomenon groups; a digit below 9 reports an occurrence.
// Positions 2 and 3 are the rain groups, 4 through 6 and 9 the frozen
// precipitation groups. The codes only count when the observation indicator
// is zero.
func deriveWeatherFlags(obs int, codes string) (rain, snow bool) {
	if obs != 0 || len(codes) != 9 {
		return false, false
	}
	var c [9]int
	for i := 0; i < 9; i++ {
		d := codes[i]
		if d < '0' || d > '9' {
			return false, false
		}
		c[i] = int(d - '0')
	}
	rain = c[1] < 9 || c[2] < 9
	snow = c[3] < 9 || c[4] < 9 || c[5] < 9 || c[8] < 9
	return rain, snow
}

// DayRecords is one day of weather records grouped by hour.
type DayRecords struct {
	Year, Month, Day int
	// Hours[h] holds the records for hour h+1, RecordsPerHour each.
	Hours [24][]WeatherRecord
}

// EPWReader reads an EPW weather file sequentially with single-rewind
// positioning.
type EPWReader struct {
	Header EPWHeader

	path    string
	f       *os.File
	sc      *bufio.Scanner
	lineNo  int
	peeked  *string
	rewound bool
}

// OpenEPW opens the file and parses the eight header records.
func OpenEPW(path string) (*EPWReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weather file: %w", err)
	}
	r := &EPWReader{path: path, f: f, sc: bufio.NewScanner(f)}

	lines := make([]string, 0, len(epwHeaderOrder))
	for i := 0; i < len(epwHeaderOrder); i++ {
		line, err := r.nextLine()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("weather file %s: header truncated: %w", path, err)
		}
		lines = append(lines, line)
	}
	if r.Header, err = ParseEPWHeader(lines); err != nil {
		f.Close()
		return nil, fmt.Errorf("weather file %s: %w", path, err)
	}
	return r, nil
}

func (r *EPWReader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

func (r *EPWReader) nextLine() (string, error) {
	if r.peeked != nil {
		line := *r.peeked
		r.peeked = nil
		return line, nil
	}
	for r.sc.Scan() {
		r.lineNo++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		return line, nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *EPWReader) pushback(line string) {
	r.peeked = &line
}

// Rewind repositions to the first data line.
func (r *EPWReader) Rewind() error {
	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("weather file %s: rewind: %w", r.path, err)
	}
	r.sc = bufio.NewScanner(r.f)
	r.lineNo = 0
	r.peeked = nil
	for i := 0; i < len(epwHeaderOrder); i++ {
		if _, err := r.nextLine(); err != nil {
			return fmt.Errorf("weather file %s: header truncated on rewind: %w", r.path, err)
		}
	}
	return nil
}

// ResetScan clears the single-rewind budget before a new positioning pass.
func (r *EPWReader) ResetScan() { r.rewound = false }

// SkipToDate scans forward until the next record carries the given month and
// day, leaving the reader positioned to read that record. year is matched
// only when nonzero. At end of file the reader rewinds once; failing to find
// the date on the second pass is an error.
func (r *EPWReader) SkipToDate(month, day, year int) error {
	for {
		line, err := r.nextLine()
		if err == io.EOF {
			if r.rewound {
				return fmt.Errorf("weather file %s: no records for %d/%d (year %d)", r.path, month, day, year)
			}
			r.rewound = true
			if err := r.Rewind(); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("weather file %s: %w", r.path, err)
		}
		y, m, d, ok := quickDate(line)
		if !ok {
			return fmt.Errorf("weather file %s line %d: unreadable date group", r.path, r.lineNo)
		}
		if m == month && d == day && (year == 0 || y == year) {
			r.pushback(line)
			return nil
		}
	}
}

func quickDate(line string) (year, month, day int, ok bool) {
	f := strings.SplitN(line, ",", 5)
	if len(f) < 4 {
		return 0, 0, 0, false
	}
	var err error
	if year, err = strconv.Atoi(strings.TrimSpace(f[0])); err != nil {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(strings.TrimSpace(f[1])); err != nil {
		return 0, 0, 0, false
	}
	if day, err = strconv.Atoi(strings.TrimSpace(f[2])); err != nil {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// ReadDay reads one day of records, verifying the date group and the hour
// sequence. The expected date guards against a mispositioned file; a
// mismatch is an error, not a silent resync. allowWrap permits a single
// rewind at end of file for environments that cycle a full-year file.
func (r *EPWReader) ReadDay(expMonth, expDay int, allowWrap bool) (*DayRecords, error) {
	rph := r.Header.RecordsPerHour
	day := &DayRecords{}
	for hr := 1; hr <= 24; hr++ {
		day.Hours[hr-1] = make([]WeatherRecord, 0, rph)
		for ts := 0; ts < rph; ts++ {
			line, err := r.nextLine()
			if err == io.EOF {
				if allowWrap && !r.rewound {
					r.rewound = true
					if err := r.Rewind(); err != nil {
						return nil, err
					}
					line, err = r.nextLine()
					if err != nil {
						return nil, fmt.Errorf("weather file %s: no data after rewind", r.path)
					}
				} else {
					return nil, fmt.Errorf("weather file %s: unexpected end of file reading %d/%d hour %d", r.path, expMonth, expDay, hr)
				}
			} else if err != nil {
				return nil, fmt.Errorf("weather file %s: %w", r.path, err)
			}

			rec, outcome := ParseWeatherLine(line)
			switch outcome {
			case ParseBadDate:
				return nil, fmt.Errorf("weather file %s line %d: unreadable date group", r.path, r.lineNo)
			case ParseShortLine:
				return nil, fmt.Errorf("weather file %s line %d: record ends before wind speed field", r.path, r.lineNo)
			}
			if rec.Month != expMonth || rec.Day != expDay {
				return nil, fmt.Errorf("weather file %s line %d: expected %d/%d hour %d, found %d/%d hour %d",
					r.path, r.lineNo, expMonth, expDay, hr, rec.Month, rec.Day, rec.Hour)
			}
			if rec.Hour != hr {
				return nil, fmt.Errorf("weather file %s line %d: expected hour %d, found hour %d", r.path, r.lineNo, hr, rec.Hour)
			}
			if hr == 1 && ts == 0 {
				day.Year, day.Month, day.Day = rec.Year, rec.Month, rec.Day
			}
			day.Hours[hr-1] = append(day.Hours[hr-1], rec)
		}
	}
	return day, nil
}

// ApplyPolicy runs the missing and range substitutions over every record of
// the day, in place.
func (day *DayRecords) ApplyPolicy(mt *MissingTracker) {
	for hr := range day.Hours {
		for i := range day.Hours[hr] {
			rec := &day.Hours[hr][i]
			rec.DryBulb = mt.DryBulb(rec.DryBulb)
			rec.DewPoint = mt.DewPoint(rec.DewPoint)
			rec.RelHum = mt.RelHum(rec.RelHum)
			rec.Pressure = mt.Pressure(rec.Pressure)
			rec.WindDir = mt.WindDir(rec.WindDir)
			rec.WindSpeed = mt.WindSpeed(rec.WindSpeed)
			rec.TotalSkyCover = mt.TotalSkyCover(rec.TotalSkyCover)
			rec.OpaqueSkyCover = mt.OpaqueSkyCover(rec.OpaqueSkyCover)
			rec.Visibility = mt.Visibility(rec.Visibility)
			rec.Ceiling = mt.Ceiling(rec.Ceiling)
			rec.PrecipWater = mt.PrecipWater(rec.PrecipWater)
			rec.AerosolDepth = mt.AerosolDepth(rec.AerosolDepth)
			rec.SnowDepth = mt.SnowDepth(rec.SnowDepth)
			rec.DaysLastSnow = mt.DaysLastSnow(rec.DaysLastSnow)
			rec.Albedo = mt.Albedo(rec.Albedo)
			rec.LiquidPrecipDepth = mt.LiquidPrecip(rec.LiquidPrecipDepth)
			rec.DirNormRad = mt.BeamRad(rec.DirNormRad)
			rec.DifHorizRad = mt.DiffuseRad(rec.DifHorizRad)
			rec.GlobalHorizRad = mt.GlobalRad(rec.GlobalHorizRad)

			// A rain flag without a recorded depth still has to wet the
			// ground model downstream, and a recorded depth raises the
			// flag when the weather codes left it unset.
			if rec.IsRain && rec.LiquidPrecipDepth == 0.0 {
				rec.LiquidPrecipDepth = 2.0
			}
			if rec.LiquidPrecipDepth > 0.0 {
				rec.IsRain = true
			}
			if rec.SnowDepth > 0.0 {
				rec.IsSnow = true
			}
		}
	}
}

package weathersim

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// ScheduleProvider supplies named value profiles to the design-day
// synthesizer and the opaque site providers. Implementations may vary
// values by day of year and weekday; the built-in one does not.
type ScheduleProvider interface {
	// ScheduleIndex resolves a name to a stable index, or errors when the
	// name is unknown.
	ScheduleIndex(name string) (int, error)
	// DayValues returns one value per timestep for a whole day,
	// 24*stepsPerHour entries.
	DayValues(index, dayOfYear int, weekday Weekday, stepsPerHour int) ([]float64, error)
	// Value returns a single timestep value. hour is 1..24, step is
	// 1..stepsPerHour.
	Value(index, dayOfYear int, weekday Weekday, hour, step, stepsPerHour int) float64
}

type scheduleKind int

const (
	scheduleConstant scheduleKind = iota
	scheduleHourly
	scheduleMonthly
)

type scheduleProfile struct {
	name     string
	kind     scheduleKind
	constant float64
	hourly   [24]float64
	monthly  [12]float64
}

// ProfileSchedules is the built-in ScheduleProvider. Profiles come from the
// project file: a constant, a 24-hour shape, or a 12-month shape. Values are
// held constant within the hour.
type ProfileSchedules struct {
	profiles []scheduleProfile
	index    map[string]int
}

func NewProfileSchedules() *ProfileSchedules {
	return &ProfileSchedules{index: map[string]int{}}
}

func (p *ProfileSchedules) add(prof scheduleProfile) int {
	idx := len(p.profiles)
	p.profiles = append(p.profiles, prof)
	p.index[prof.name] = idx
	return idx
}

// AddConstant registers a profile that holds one value all year.
func (p *ProfileSchedules) AddConstant(name string, value float64) int {
	return p.add(scheduleProfile{name: name, kind: scheduleConstant, constant: value})
}

// AddHourly registers a 24-hour shape repeated every day.
func (p *ProfileSchedules) AddHourly(name string, values [24]float64) int {
	return p.add(scheduleProfile{name: name, kind: scheduleHourly, hourly: values})
}

// AddMonthly registers a 12-month shape, constant within each month.
func (p *ProfileSchedules) AddMonthly(name string, values [12]float64) int {
	return p.add(scheduleProfile{name: name, kind: scheduleMonthly, monthly: values})
}

// Names lists the registered profile names in registration order.
func (p *ProfileSchedules) Names() []string {
	names := make([]string, len(p.profiles))
	for i, prof := range p.profiles {
		names[i] = prof.name
	}
	return names
}

func (p *ProfileSchedules) ScheduleIndex(name string) (int, error) {
	if idx, ok := p.index[name]; ok {
		return idx, nil
	}
	if near := p.nearestName(name); near != "" {
		return 0, fmt.Errorf("unknown schedule %q (did you mean %q?)", name, near)
	}
	return 0, fmt.Errorf("unknown schedule %q", name)
}

// nearestName finds the closest registered name by edit distance, within a
// limit scaled to the name length.
func (p *ProfileSchedules) nearestName(name string) string {
	best := ""
	bestDist := 0
	for _, prof := range p.profiles {
		dist := levenshtein.ComputeDistance(name, prof.name)
		if dist > editLimit(len(prof.name)) {
			continue
		}
		if best == "" || dist < bestDist {
			best = prof.name
			bestDist = dist
		}
	}
	return best
}

func editLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func (p *ProfileSchedules) DayValues(index, dayOfYear int, weekday Weekday, stepsPerHour int) ([]float64, error) {
	if index < 0 || index >= len(p.profiles) {
		return nil, fmt.Errorf("schedule index %d out of range", index)
	}
	out := make([]float64, 24*stepsPerHour)
	for hour := 1; hour <= 24; hour++ {
		v := p.hourValue(index, dayOfYear, hour)
		for step := 1; step <= stepsPerHour; step++ {
			out[(hour-1)*stepsPerHour+step-1] = v
		}
	}
	return out, nil
}

func (p *ProfileSchedules) Value(index, dayOfYear int, weekday Weekday, hour, step, stepsPerHour int) float64 {
	if index < 0 || index >= len(p.profiles) {
		return 0.0
	}
	return p.hourValue(index, dayOfYear, hour)
}

func (p *ProfileSchedules) hourValue(index, dayOfYear, hour int) float64 {
	prof := &p.profiles[index]
	switch prof.kind {
	case scheduleConstant:
		return prof.constant
	case scheduleHourly:
		return prof.hourly[hour-1]
	case scheduleMonthly:
		if dayOfYear > 365 {
			dayOfYear = 365
		}
		month, _ := MonthDayFromOrdinal(dayOfYear, 0)
		return prof.monthly[month-1]
	}
	return 0.0
}

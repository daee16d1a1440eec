package weathersim

import (
	"fmt"
	"sort"

	"github.com/hhkbp2/go-logging"
)

// Reporter is the diagnostics sink for the engine. Warnings and severe errors
// are logged and tallied; severe errors accumulated during configuration are
// escalated to a single fatal error before simulation starts. Fatal errors
// are returned to the caller, never panicked.
type Reporter struct {
	log logging.Logger

	warnings int
	severes  int

	// recurring suppresses per-timestep repeats: the first occurrence logs,
	// the rest only count until FlushRecurring.
	recurring map[string]int
}

func NewReporter() *Reporter {
	return &Reporter{
		log:       logging.GetLogger("weathersim"),
		recurring: make(map[string]int),
	}
}

// Warning reports a recoverable condition. Execution continues.
func (r *Reporter) Warning(format string, args ...interface{}) {
	r.warnings++
	r.log.Warnf(format, args...)
}

// Severe reports a condition that invalidates the run but allows further
// input processing so that all problems surface in one pass.
func (r *Reporter) Severe(format string, args ...interface{}) {
	r.severes++
	r.log.Errorf(format, args...)
}

// Fatal reports an unrecoverable condition and returns the error the caller
// must propagate. The engine never continues past a fatal report.
func (r *Reporter) Fatal(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	r.log.Fatalf("fatal: %s", err.Error())
	return err
}

// WarningRecurring logs the first occurrence keyed by key and counts
// subsequent ones silently. FlushRecurring reports the totals.
func (r *Reporter) WarningRecurring(key, format string, args ...interface{}) {
	n := r.recurring[key]
	r.recurring[key] = n + 1
	if n == 0 {
		r.warnings++
		r.log.Warnf(format, args...)
	}
}

// FlushRecurring emits one summary line per suppressed message key and
// resets the suppression map. Called at environment close.
func (r *Reporter) FlushRecurring() {
	keys := make([]string, 0, len(r.recurring))
	for k := range r.recurring {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if n := r.recurring[k]; n > 1 {
			r.log.Warnf("%s occurred %d times in this environment (first occurrence logged above)", k, n)
		}
	}
	r.recurring = make(map[string]int)
}

// FailIfSevere converts accumulated severe errors into one fatal error.
// phase names the processing stage for the message.
func (r *Reporter) FailIfSevere(phase string) error {
	if r.severes == 0 {
		return nil
	}
	return r.Fatal("%s: %d severe error(s); correct the input and rerun", phase, r.severes)
}

// Counts returns the warning and severe tallies so far.
func (r *Reporter) Counts() (warnings, severes int) {
	return r.warnings, r.severes
}

// SetLevel adjusts the verbosity of the underlying logger.
func (r *Reporter) SetLevel(level logging.LogLevelType) {
	r.log.SetLevel(level)
}

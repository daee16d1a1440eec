// WeatherSim
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/hhkbp2/go-logging"
	"github.com/openbps/weathersim-go/weathersim"
)

func main() {
	parser := argparse.NewParser("weathersim", "Simulates weather environments from an EPW file and a project description")

	projectPath := parser.StringPositional(&argparse.Options{
		Default: "",
		Help:    "project YAML file"})

	weatherPath := parser.String("w", "weather", &argparse.Options{
		Default: "",
		Help:    "EPW weather file, overriding the project's"})

	outPath := parser.String("o", "output", &argparse.Options{
		Default: "",
		Help:    "output file path, stdout when empty"})

	format := parser.Selector("f", "format", []string{"CSV", "DAILY"}, &argparse.Options{
		Default: "CSV",
		Help:    "output format: per-timestep CSV or DAILY summary"})

	timesteps := parser.Int("t", "timesteps", &argparse.Options{
		Default: 0,
		Help:    "timesteps per hour, overriding the project's"})

	warmup := parser.Int("", "warmup", &argparse.Options{
		Default: 0,
		Help:    "warmup repeats of each environment's first day"})

	logLevel := parser.Selector("", "log", []string{"DEBUG", "INFO", "WARN", "ERROR", "CRITICAL"}, &argparse.Options{
		Default: "WARN",
		Help:    "log level"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}
	if *projectPath == "" {
		fmt.Print(parser.Usage(fmt.Errorf("project file required")))
		os.Exit(1)
	}

	rep := weathersim.NewReporter()
	if *logLevel == "DEBUG" {
		rep.SetLevel(logging.LevelDebug)
	} else if *logLevel == "INFO" {
		rep.SetLevel(logging.LevelInfo)
	} else if *logLevel == "WARN" {
		rep.SetLevel(logging.LevelWarn)
	} else if *logLevel == "ERROR" {
		rep.SetLevel(logging.LevelError)
	} else if *logLevel == "CRITICAL" {
		rep.SetLevel(logging.LevelCritical)
	}

	project, err := weathersim.LoadProject(*projectPath)
	if err != nil {
		fail(err)
	}
	if *timesteps > 0 {
		project.TimestepsPerHour = *timesteps
	}
	epwPath := project.WeatherFile
	if *weatherPath != "" {
		epwPath = *weatherPath
	}

	eng, err := project.Engine(rep)
	if err != nil {
		fail(err)
	}
	if err := eng.Setup(epwPath); err != nil {
		fail(err)
	}
	defer eng.Close()
	if err := rep.FailIfSevere("setup"); err != nil {
		fail(err)
	}

	runLog := weathersim.NewRunLog(project.Title, project.TimestepsPerHour)
	for {
		ok, err := eng.NextEnvironment()
		if err != nil {
			fail(err)
		}
		if !ok {
			break
		}
		env, _ := eng.Environment()
		for i := 0; i < *warmup; i++ {
			if err := eng.InitializeDay(true); err != nil {
				fail(err)
			}
		}
		days := env.TotalDays * env.NumSimYears
		for d := 0; d < days; d++ {
			if err := eng.AdvanceDay(); err != nil {
				fail(err)
			}
			for hr := 1; hr <= 24; hr++ {
				for ts := 1; ts <= project.TimestepsPerHour; ts++ {
					eng.SetCurrentWeather(hr, ts)
					runLog.Append(eng.Current(), eng.WaterMainsTemp())
				}
			}
		}
		eng.CloseEnvironment()
	}

	if err := rep.FailIfSevere("simulation"); err != nil {
		fail(err)
	}

	buf := bytes.NewBuffer([]byte{})
	if *format == "CSV" {
		runLog.ToCSV(buf)
	} else if *format == "DAILY" {
		runLog.ToDailySummary(buf)
	}

	if *outPath == "" {
		fmt.Print(buf.String())
	} else {
		if err := os.WriteFile(*outPath, buf.Bytes(), 0o644); err != nil {
			fail(err)
		}
	}

	warnings, severes := rep.Counts()
	fmt.Fprintf(os.Stderr, "completed: %d timestep(s), %d warning(s), %d severe error(s)\n",
		runLog.Len(), warnings, severes)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

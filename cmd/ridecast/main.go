// Command ridecast aggregates bike-share rides by neighborhood and forecasts
// daily ridership with SARIMA models.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sartorproj/ridecast/config"
)

const usage = `usage: ridecast <command> [flags] [args]

commands:
  aggregate     raw ride CSVs -> annotated station-day CSV
  series        station-day CSV -> one neighborhood's daily series CSV
  stationarity  series CSV -> Augmented Dickey-Fuller verdict
  grid          station-day CSV -> SARIMA grid search per neighborhood
  model         station-day CSV -> fit, forecast, metrics and chart per neighborhood
  runs          list recorded runs, or show the rows of one run

Run 'ridecast <command> -h' for the flags of a command.
`

type command func(cfg *config.Config, logger *log.Logger, args []string) error

var commands = map[string]command{
	"aggregate":    runAggregate,
	"series":       runSeries,
	"stationarity": runStationarity,
	"grid":         runGrid,
	"model":        runModel,
	"runs":         runRuns,
}

// stdout receives results; logs go to the logger.
var stdout io.Writer = os.Stdout

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "[ridecast] ", log.LstdFlags)
	cfg := config.Load()
	if err := cmd(cfg, logger, os.Args[2:]); err != nil {
		logger.Fatalf("%s: %v", os.Args[1], err)
	}
}

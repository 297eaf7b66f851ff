package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sartorproj/ridecast/config"
	"github.com/sartorproj/ridecast/geo"
	"github.com/sartorproj/ridecast/rides"
	"github.com/sartorproj/ridecast/stats"
	"github.com/sartorproj/ridecast/timeseries"
)

func runAggregate(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	boundaries := fs.String("boundaries", cfg.BoundariesPath, "GeoJSON neighborhood boundaries")
	nbKey := fs.String("neighborhood-key", cfg.NeighborhoodKey, "feature property holding the neighborhood name")
	boroKey := fs.String("borough-key", cfg.BoroughKey, "feature property holding the borough name")
	out := fs.String("out", filepath.Join(cfg.OutputDir, "station_days.csv"), "output station-day CSV")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return errors.New("at least one ride CSV is required")
	}

	var all []rides.Ride
	for _, path := range fs.Args() {
		rs, schema, err := rides.ReadRidesFile(path)
		if err != nil {
			return err
		}
		logger.Printf("Read %d rides from %s (%s schema)", len(rs), path, schema.Name)
		all = append(all, rs...)
	}

	days := rides.Aggregate(all)
	logger.Printf("Aggregated %d rides into %d station-days", len(all), len(days))

	b, err := geo.LoadBoundaries(*boundaries)
	if err != nil {
		return err
	}
	b.NeighborhoodKey, b.BoroughKey = *nbKey, *boroKey
	if unresolved := rides.Annotate(days, b); unresolved > 0 {
		logger.Printf("%d station-days fall outside every boundary", unresolved)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := rides.SaveStationDays(*out, days); err != nil {
		return err
	}
	logger.Printf("Wrote %s", *out)
	return nil
}

func runSeries(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("series", flag.ExitOnError)
	in := fs.String("in", filepath.Join(cfg.OutputDir, "station_days.csv"), "station-day CSV")
	neighborhood := fs.String("neighborhood", "", "neighborhood to extract (required)")
	out := fs.String("out", "", "output series CSV (default stdout)")
	fs.Parse(args)

	if *neighborhood == "" {
		return errors.New("-neighborhood is required")
	}

	days, err := rides.LoadStationDays(*in)
	if err != nil {
		return err
	}
	series, err := rides.NeighborhoodSeries(days, *neighborhood)
	if err != nil {
		return err
	}

	if *out == "" {
		return timeseries.WriteCSV(stdout, series)
	}
	if err := timeseries.SaveCSV(series, *out); err != nil {
		return err
	}
	logger.Printf("Wrote %d days for %s to %s", series.Len(), *neighborhood, *out)
	return nil
}

func runStationarity(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("stationarity", flag.ExitOnError)
	logTransform := fs.Bool("log", false, "test the natural log of the series")
	acfLags := fs.Int("acf", 0, "also list significant ACF and PACF lags up to this lag")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return errors.New("at least one series CSV is required")
	}

	for _, path := range fs.Args() {
		series, err := timeseries.LoadCSV(path, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: ", path)
		if _, _, err := stats.DickeyFuller(series, *logTransform, stdout); err != nil {
			fmt.Fprintln(stdout)
			logger.Printf("%s: %v", path, err)
			continue
		}

		if *acfLags > 0 {
			s := series
			if *logTransform {
				s = series.Log()
			}
			bound := stats.ConfidenceBound(s.Len())
			fmt.Fprintf(stdout, "  significant ACF lags: %v\n", stats.SignificantLags(stats.ACF(s, *acfLags), bound))
			fmt.Fprintf(stdout, "  significant PACF lags: %v\n", stats.SignificantLags(stats.PACF(s, *acfLags), bound))
		}
	}
	return nil
}

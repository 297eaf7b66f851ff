package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"text/tabwriter"
	"time"

	"github.com/sartorproj/ridecast/config"
	"github.com/sartorproj/ridecast/store"
)

func runRuns(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "SQLite database holding the runs")
	runID := fs.String("run", "", "show the rows of this run")
	history := fs.Bool("history", false, "for grid runs, show every improvement instead of the best row")
	fs.Parse(args)

	if *dbPath == "" {
		return errors.New("-db is required")
	}
	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Runs()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	if *runID == "" {
		fmt.Fprintln(w, "run_id\tkind\tcreated_at")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Kind, r.CreatedAt.Format(time.DateTime))
		}
		return w.Flush()
	}

	kind := ""
	for _, r := range runs {
		if r.ID == *runID {
			kind = r.Kind
		}
	}

	switch kind {
	case store.KindGrid:
		rows, err := db.BestGridRows(*runID)
		if *history {
			rows, err = db.GridRows(*runID)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "neighborhood\torder\tseasonal_order\texplained_variance")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\n", r.Neighborhood, r.Order, r.Seasonal, r.ExplainedVariance)
		}
	case store.KindModel:
		results, err := db.Results(*runID)
		if err != nil {
			return err
		}
		preds, err := db.Predictions(*runID)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "neighborhood\torder\tseasonal_order\texplained_variance\tpredictions\tdelta")
		for _, r := range results {
			n := 0
			col, _ := preds.Column(r.Neighborhood)
			for _, v := range col {
				if !math.IsNaN(v) {
					n++
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%d\t%.0f\n",
				r.Neighborhood, r.Order, r.Seasonal, r.ExplainedVariance, n, r.Delta)
		}
	default:
		return fmt.Errorf("%w: %s", store.ErrUnknownRun, *runID)
	}
	logger.Printf("Run %s (%s)", *runID, kind)
	return w.Flush()
}

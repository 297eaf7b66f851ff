package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/sartorproj/ridecast/accuracy"
	"github.com/sartorproj/ridecast/config"
	"github.com/sartorproj/ridecast/model"
	"github.com/sartorproj/ridecast/report"
	"github.com/sartorproj/ridecast/rides"
	"github.com/sartorproj/ridecast/sarima"
	"github.com/sartorproj/ridecast/store"
	"github.com/sartorproj/ridecast/telemetry"
)

// outputs holds the optional sinks shared by grid and model.
type outputs struct {
	db       *store.Store
	runID    string
	metrics  *telemetry.Recorder
	textfile string
}

func openOutputs(kind, dbPath, textfile string, logger *log.Logger) (*outputs, error) {
	o := &outputs{metrics: telemetry.NewRecorder(), textfile: textfile}
	if dbPath == "" {
		return o, nil
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	runID, err := db.NewRun(kind)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Printf("Recording %s run %s in %s", kind, runID, dbPath)
	o.db, o.runID = db, runID
	return o, nil
}

func (o *outputs) close(logger *log.Logger) {
	if o.textfile != "" {
		if err := o.metrics.WriteTextfile(o.textfile); err != nil {
			logger.Printf("metrics: %v", err)
		}
	}
	if o.db != nil {
		o.db.Close()
	}
}

// holdOut picks the rows a frame holds out: every day after a date when one
// is set, otherwise the latest fraction of days.
type holdOut struct {
	fraction float64
	after    time.Time
}

func parseHoldOut(fraction float64, after string) (holdOut, error) {
	h := holdOut{fraction: fraction}
	if after == "" {
		return h, nil
	}
	d, err := time.Parse(time.DateOnly, after)
	if err != nil {
		return h, fmt.Errorf("holdout-after: %w", err)
	}
	h.after = d
	return h, nil
}

// loadFrame extracts one neighborhood's series and flags its hold-out rows.
func loadFrame(days []rides.StationDay, neighborhood string, h holdOut) (*model.Frame, error) {
	series, err := rides.NeighborhoodSeries(days, neighborhood)
	if err != nil {
		return nil, err
	}
	frame := model.NewFrame(neighborhood, series)
	if h.after.IsZero() {
		err = frame.HoldOutFraction(h.fraction)
	} else {
		err = frame.HoldOutAfter(h.after)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", neighborhood, err)
	}
	return frame, nil
}

func runGrid(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	in := fs.String("in", filepath.Join(cfg.OutputDir, "station_days.csv"), "station-day CSV")
	neighborhoods := fs.String("neighborhoods", "", "comma-separated neighborhoods (default all)")
	fraction := fs.Float64("holdout", cfg.HoldOut, "fraction of the latest days held out")
	after := fs.String("holdout-after", "", "hold out every day after this date instead (YYYY-MM-DD)")
	pList := fs.String("p", "0,1,2", "candidate p values")
	dList := fs.String("d", "0,1", "candidate d values")
	qList := fs.String("q", "0,1,2", "candidate q values")
	spList := fs.String("P", "0,1", "candidate seasonal P values")
	sdList := fs.String("D", "0,1", "candidate seasonal D values")
	sqList := fs.String("Q", "0,1", "candidate seasonal Q values")
	period := fs.Int("s", 7, "seasonal period")
	maxIter := fs.Int("max-iter", cfg.MaxIter, "optimizer iteration cap per fit")
	dbPath := fs.String("db", cfg.DBPath, "SQLite database to record the run in")
	textfile := fs.String("metrics", cfg.MetricsTextfile, "Prometheus textfile to write")
	fs.Parse(args)

	h, err := parseHoldOut(*fraction, *after)
	if err != nil {
		return err
	}

	var lists [6][]int
	for i, s := range []string{*pList, *dList, *qList, *spList, *sdList, *sqList} {
		v, err := parseInts(s)
		if err != nil {
			return err
		}
		lists[i] = v
	}

	days, err := rides.LoadStationDays(*in)
	if err != nil {
		return err
	}

	out, err := openOutputs(store.KindGrid, *dbPath, *textfile, logger)
	if err != nil {
		return err
	}
	defer out.close(logger)

	search := &model.GridSearch{
		Orders:         model.OrderGrid(lists[0], lists[1], lists[2]),
		SeasonalOrders: model.SeasonalGrid(lists[3], lists[4], lists[5], *period),
		MaxIter:        *maxIter,
		Logger:         logger,
		OnCandidate:    out.metrics.ObserveCandidate,
	}
	table := model.NewGridTable()

	for _, nb := range selectNeighborhoods(days, *neighborhoods) {
		frame, err := loadFrame(days, nb, h)
		if err != nil {
			logger.Printf("skipping %s: %v", nb, err)
			continue
		}
		if err := search.Run(nb, frame, table); err != nil {
			logger.Printf("skipping %s: %v", nb, err)
		}
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "neighborhood\torder\tseasonal_order\texplained_variance")
	for _, row := range table.Rows() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\n", row.Neighborhood, row.Order, row.Seasonal, row.ExplainedVariance)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if out.db != nil {
		return out.db.SaveGrid(out.runID, table)
	}
	return nil
}

func runModel(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("model", flag.ExitOnError)
	in := fs.String("in", filepath.Join(cfg.OutputDir, "station_days.csv"), "station-day CSV")
	neighborhoods := fs.String("neighborhoods", "", "comma-separated neighborhoods (default all)")
	fraction := fs.Float64("holdout", cfg.HoldOut, "fraction of the latest days held out")
	after := fs.String("holdout-after", "", "hold out every day after this date instead (YYYY-MM-DD)")
	orderFlag := fs.String("order", "1,1,1", "non-seasonal order p,d,q")
	seasonalFlag := fs.String("seasonal", "1,1,1,7", "seasonal order P,D,Q,s")
	logged := fs.Bool("log", true, "fit on the natural log of ride counts")
	cutoffFlag := fs.String("cutoff", cfg.Cutoff.Format(time.DateOnly), "compare totals after this date")
	maxIter := fs.Int("max-iter", cfg.MaxIter, "optimizer iteration cap per fit")
	chartDir := fs.String("charts", cfg.OutputDir, "directory for forecast charts (empty to skip)")
	chartExt := fs.String("format", ".png", "static chart format: .png, .svg or .pdf")
	html := fs.Bool("html", false, "also write an interactive HTML chart")
	summary := fs.Bool("summary", false, "print coefficients and residual diagnostics")
	dbPath := fs.String("db", cfg.DBPath, "SQLite database to record the run in")
	textfile := fs.String("metrics", cfg.MetricsTextfile, "Prometheus textfile to write")
	fs.Parse(args)

	order, err := parseOrder(*orderFlag)
	if err != nil {
		return err
	}
	seasonal, err := parseSeasonalOrder(*seasonalFlag)
	if err != nil {
		return err
	}
	cutoff, err := time.Parse(time.DateOnly, *cutoffFlag)
	if err != nil {
		return fmt.Errorf("cutoff: %w", err)
	}
	h, err := parseHoldOut(*fraction, *after)
	if err != nil {
		return err
	}

	days, err := rides.LoadStationDays(*in)
	if err != nil {
		return err
	}
	if *chartDir != "" {
		if err := os.MkdirAll(*chartDir, 0o755); err != nil {
			return err
		}
	}

	out, err := openOutputs(store.KindModel, *dbPath, *textfile, logger)
	if err != nil {
		return err
	}
	defer out.close(logger)

	runner := &model.Runner{Cutoff: cutoff, MaxIter: *maxIter, Logger: logger}
	results := model.NewResults()
	preds := model.NewPredictions(nil)

	for _, nb := range selectNeighborhoods(days, *neighborhoods) {
		frame, err := loadFrame(days, nb, h)
		if err != nil {
			logger.Printf("skipping %s: %v", nb, err)
			continue
		}
		res, err := runner.Run(results, preds, nb, frame, order, seasonal, *logged)
		if err != nil {
			out.metrics.ObserveFailure(nb, err)
			logger.Printf("skipping %s: %v", nb, err)
			continue
		}
		out.metrics.ObserveResult(res)

		fmt.Fprintf(stdout, "%s %s\n", nb, res.Model)
		if err := accuracy.Print(stdout, res.Scores); err != nil {
			return err
		}
		if *summary {
			printSummary(res.Model.Summary())
		}
		fmt.Fprintf(stdout, "Actual after %s: %.0f, predicted: %.0f, delta: %.0f\n\n",
			cutoff.Format(time.DateOnly), res.ActualAfterCutoff, res.PredictedAfterCutoff, res.Delta)

		if *chartDir != "" {
			if err := writeCharts(*chartDir, *chartExt, *html, frame, res); err != nil {
				logger.Printf("chart %s: %v", nb, err)
			}
		}
	}

	if out.db != nil {
		if err := out.db.SaveResults(out.runID, results); err != nil {
			return err
		}
		return out.db.SavePredictions(out.runID, preds)
	}
	return nil
}

func writeCharts(dir, ext string, html bool, frame *model.Frame, res *model.Result) error {
	if err := report.PlotForecast(frame, res.Forecast, res.Logged, chartPath(dir, res.Neighborhood, ext)); err != nil {
		return err
	}
	if !html {
		return nil
	}
	f, err := os.Create(chartPath(dir, res.Neighborhood, ".html"))
	if err != nil {
		return err
	}
	if err := report.RenderHTML(f, frame, res.Forecast, res.Logged); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(s *sarima.Summary) {
	fmt.Fprintf(stdout, "AR: %.4f MA: %.4f SAR: %.4f SMA: %.4f\n", s.AR, s.MA, s.SAR, s.SMA)
	fmt.Fprintf(stdout, "sigma^2: %.6f AIC: %.2f BIC: %.2f (%d obs, %d iterations)\n",
		s.Sigma2, s.AIC, s.BIC, s.NObs, s.Iterations)
	if lb := s.LjungBox; lb != nil {
		verdict := "residuals look like white noise"
		if !lb.White() {
			verdict = "residuals are autocorrelated"
		}
		fmt.Fprintf(stdout, "Ljung-Box Q(%d): %.2f, p=%.4f, %s\n", lb.Lags, lb.Statistic, lb.PValue, verdict)
	}
}

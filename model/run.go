package model

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/sartorproj/ridecast/accuracy"
	"github.com/sartorproj/ridecast/sarima"
	"github.com/sartorproj/ridecast/timeseries"
)

// DefaultCutoff separates the 2021 totals from earlier ridership.
var DefaultCutoff = time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

// Runner fits one model per call and records it in the caller's tables.
type Runner struct {
	Cutoff  time.Time
	MaxIter int
	Logger  *log.Logger // nil is silent
}

// NewRunner returns a runner with the default cutoff and iteration cap.
func NewRunner() *Runner {
	return &Runner{Cutoff: DefaultCutoff, MaxIter: sarima.DefaultMaxIter}
}

// RunModel runs the default runner.
func RunModel(results *Results, preds *Predictions, neighborhood string, frame *Frame,
	order sarima.Order, seasonal sarima.SeasonalOrder, logged bool) (*Result, error) {
	return NewRunner().Run(results, preds, neighborhood, frame, order, seasonal, logged)
}

// Run fits the model on the frame's training rows, forecasts the held-out
// rows and writes the forecast column and results row for neighborhood.
//
// The predictions column is always on the count scale. Scores compare the
// held-out values with the forecast on the scale the model was fit on. The
// after-cutoff totals compare every frame row dated after the cutoff with the
// predictions column.
func (r *Runner) Run(results *Results, preds *Predictions, neighborhood string, frame *Frame,
	order sarima.Order, seasonal sarima.SeasonalOrder, logged bool) (*Result, error) {
	train, test, err := frame.Split(logged)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", neighborhood, err)
	}

	m := sarima.New(order, seasonal)
	if r.MaxIter > 0 {
		m.MaxIter = r.MaxIter
	}
	if err := m.Fit(train); err != nil {
		return nil, fmt.Errorf("fit %s for %s: %w", m, neighborhood, err)
	}

	forecast, err := m.Forecast(test.Len())
	if err != nil {
		return nil, fmt.Errorf("forecast %s for %s: %w", m, neighborhood, err)
	}

	column := forecast
	if logged {
		column = make([]float64, len(forecast))
		for i, v := range forecast {
			column[i] = math.Exp(v)
		}
	}
	if err := preds.Set(neighborhood, test.Timestamps, column); err != nil {
		return nil, err
	}

	scores, err := accuracy.Score(test.Values, forecast)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", neighborhood, err)
	}

	cutoff := r.Cutoff
	if cutoff.IsZero() {
		cutoff = DefaultCutoff
	}
	actual := frame.Series().SumAfter(cutoff)
	predicted := preds.SumAfter(neighborhood, cutoff)

	res := &Result{
		Neighborhood:         neighborhood,
		Model:                m,
		Order:                order,
		Seasonal:             seasonal,
		Logged:               logged,
		Scores:               scores,
		Forecast:             &timeseries.Series{Timestamps: test.Timestamps, Values: forecast, Name: neighborhood},
		ActualAfterCutoff:    actual,
		PredictedAfterCutoff: predicted,
		Delta:                math.Abs(predicted - actual),
		AIC:                  m.AIC,
		BIC:                  m.BIC,
	}
	results.Set(res)

	if r.Logger != nil {
		r.Logger.Printf("%s: %s ev=%.4f delta=%.0f (%d iterations)",
			neighborhood, m, scores.ExplainedVariance, res.Delta, m.Iterations)
	}
	return res, nil
}

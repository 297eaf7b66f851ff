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

// Candidate is one evaluated (order, seasonal order) combination.
type Candidate struct {
	Neighborhood string
	Order        sarima.Order
	Seasonal     sarima.SeasonalOrder
	Score        float64
	Duration     time.Duration
	Improved     bool
	Err          error
}

// GridSearch tries every combination of Orders and SeasonalOrders.
type GridSearch struct {
	Orders         []sarima.Order
	SeasonalOrders []sarima.SeasonalOrder
	MaxIter        int
	Logger         *log.Logger

	// OnCandidate, if set, is called after each fit, including a failed one.
	OnCandidate func(Candidate)
}

// Run searches one neighborhood. Each candidate is fit on the log training
// rows and scored by explained variance between the held-out ride counts and
// the exponentiated forecast. A strictly better score than every earlier
// candidate (starting from -1) is written to table immediately. The first
// fit or forecast error stops the search.
func (g *GridSearch) Run(neighborhood string, frame *Frame, table *GridTable) error {
	if g.Logger != nil {
		g.Logger.Printf("Currently working on: %s", neighborhood)
	}

	train, _, err := frame.Split(true)
	if err != nil {
		return fmt.Errorf("%s: %w", neighborhood, err)
	}
	_, actual, err := frame.Split(false)
	if err != nil {
		return fmt.Errorf("%s: %w", neighborhood, err)
	}

	best := -1.0
	for _, order := range g.Orders {
		for _, seasonal := range g.SeasonalOrders {
			began := time.Now()
			score, err := g.evaluate(train, actual.Values, order, seasonal)

			c := Candidate{
				Neighborhood: neighborhood,
				Order:        order,
				Seasonal:     seasonal,
				Score:        score,
				Duration:     time.Since(began),
				Err:          err,
			}
			if err == nil && score > best {
				best = score
				c.Improved = true
				table.Record(GridRow{
					Neighborhood:      neighborhood,
					Order:             order,
					Seasonal:          seasonal,
					ExplainedVariance: score,
				})
			}
			if g.OnCandidate != nil {
				g.OnCandidate(c)
			}
			if err != nil {
				return fmt.Errorf("grid search %s %s x %s: %w", neighborhood, order, seasonal, err)
			}
		}
	}
	return nil
}

func (g *GridSearch) evaluate(train *timeseries.Series, actual []float64,
	order sarima.Order, seasonal sarima.SeasonalOrder) (float64, error) {
	m := sarima.New(order, seasonal)
	if g.MaxIter > 0 {
		m.MaxIter = g.MaxIter
	}
	if err := m.Fit(train); err != nil {
		return math.NaN(), err
	}

	forecast, err := m.Forecast(len(actual))
	if err != nil {
		return math.NaN(), err
	}
	for i, v := range forecast {
		forecast[i] = math.Exp(v)
	}
	return accuracy.ExplainedVariance(actual, forecast)
}

// OrderGrid returns every (p, d, q) combination with p varying slowest.
func OrderGrid(p, d, q []int) []sarima.Order {
	var out []sarima.Order
	for _, pv := range p {
		for _, dv := range d {
			for _, qv := range q {
				out = append(out, sarima.Order{P: pv, D: dv, Q: qv})
			}
		}
	}
	return out
}

// SeasonalGrid returns every (P, D, Q, s) combination for one period.
func SeasonalGrid(p, d, q []int, period int) []sarima.SeasonalOrder {
	var out []sarima.SeasonalOrder
	for _, pv := range p {
		for _, dv := range d {
			for _, qv := range q {
				out = append(out, sarima.SeasonalOrder{P: pv, D: dv, Q: qv, S: period})
			}
		}
	}
	return out
}

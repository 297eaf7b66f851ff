// Package report draws hold-out forecasts against observed ridership.
package report

import (
	"errors"
	"math"
	"time"

	"github.com/sartorproj/ridecast/model"
	"github.com/sartorproj/ridecast/timeseries"
)

// Series labels, shared by the static and HTML charts.
const (
	labelTrain     = "actual train"
	labelTest      = "actual test"
	labelPredicted = "predicted test"
)

type point struct {
	t time.Time
	v float64
}

type chart struct {
	title     string
	train     []point
	test      []point
	predicted []point
}

// newChart splits the frame into training and held-out actuals and puts the
// forecast on the count scale.
func newChart(frame *model.Frame, forecast *timeseries.Series, logged bool) (*chart, error) {
	if frame == nil || forecast == nil {
		return nil, errors.New("report: frame and forecast are required")
	}
	if len(forecast.Timestamps) != len(forecast.Values) {
		return nil, errors.New("report: forecast needs one timestamp per value")
	}

	c := &chart{title: frame.Neighborhood}
	for i, d := range frame.Dates {
		p := point{d, frame.RideCount[i]}
		if frame.Future[i] {
			c.test = append(c.test, p)
		} else {
			c.train = append(c.train, p)
		}
	}
	for i, d := range forecast.Timestamps {
		v := forecast.Values[i]
		if logged {
			v = math.Exp(v)
		}
		c.predicted = append(c.predicted, point{d, v})
	}
	return c, nil
}

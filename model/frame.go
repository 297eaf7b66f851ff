package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/ridecast/timeseries"
)

// ErrEmptyHoldout is returned when a frame has no held-out rows, or nothing
// left to train on.
var ErrEmptyHoldout = errors.New("model: frame needs both training and held-out rows")

// Frame is one neighborhood's daily ridership with a held-out flag per row.
type Frame struct {
	Neighborhood string
	Dates        []time.Time
	RideCount    []float64
	Future       []bool
}

// NewFrame copies a daily series into a frame with every row in training.
func NewFrame(neighborhood string, series *timeseries.Series) *Frame {
	return &Frame{
		Neighborhood: neighborhood,
		Dates:        append([]time.Time(nil), series.Timestamps...),
		RideCount:    append([]float64(nil), series.Values...),
		Future:       make([]bool, series.Len()),
	}
}

// Len is the number of days in the frame.
func (f *Frame) Len() int {
	return len(f.RideCount)
}

// HoldOutFraction flags the chronologically last fraction of rows as future.
func (f *Frame) HoldOutFraction(fraction float64) error {
	if fraction <= 0 || fraction >= 1 {
		return fmt.Errorf("model: hold-out fraction %v outside (0, 1)", fraction)
	}
	held := int(math.Round(float64(f.Len()) * fraction))
	if held == 0 || held == f.Len() {
		return fmt.Errorf("%w: %d of %d rows", ErrEmptyHoldout, held, f.Len())
	}
	for i := range f.Future {
		f.Future[i] = i >= f.Len()-held
	}
	return nil
}

// HoldOutAfter flags every row dated strictly after cutoff as future.
func (f *Frame) HoldOutAfter(cutoff time.Time) error {
	held := 0
	for i, d := range f.Dates {
		f.Future[i] = d.After(cutoff)
		if f.Future[i] {
			held++
		}
	}
	if held == 0 || held == f.Len() {
		return fmt.Errorf("%w: %d of %d rows after %s", ErrEmptyHoldout, held, f.Len(), cutoff.Format(time.DateOnly))
	}
	return nil
}

// LogRideCount is the natural log of each ride count.
func (f *Frame) LogRideCount() []float64 {
	out := make([]float64, f.Len())
	for i, v := range f.RideCount {
		out[i] = math.Log(v)
	}
	return out
}

// Series returns the full ride-count series.
func (f *Frame) Series() *timeseries.Series {
	return &timeseries.Series{
		Timestamps: append([]time.Time(nil), f.Dates...),
		Values:     append([]float64(nil), f.RideCount...),
		Name:       f.Neighborhood,
	}
}

// Split returns the training and held-out rows, as log ride counts when
// logged is set.
func (f *Frame) Split(logged bool) (train, test *timeseries.Series, err error) {
	values := f.RideCount
	if logged {
		values = f.LogRideCount()
	}

	train = &timeseries.Series{Name: f.Neighborhood}
	test = &timeseries.Series{Name: f.Neighborhood}
	for i, future := range f.Future {
		s := train
		if future {
			s = test
		}
		s.Timestamps = append(s.Timestamps, f.Dates[i])
		s.Values = append(s.Values, values[i])
	}

	if train.Len() == 0 || test.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: %d training and %d held-out rows", ErrEmptyHoldout, train.Len(), test.Len())
	}
	return train, test, nil
}

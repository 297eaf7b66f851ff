// Package timeseries provides the daily series type shared by the ridership pipeline.
package timeseries

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Day is the resampling bucket used throughout the package.
const Day = 24 * time.Hour

// Series represents a time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a daily series starting at start.
func New(start time.Time, values []float64) *Series {
	start = Truncate(start)
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = start.AddDate(0, 0, i)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Truncate returns midnight UTC of the calendar day t falls on.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Sum returns the total of all values.
func (s *Series) Sum() float64 {
	return floats.Sum(s.Values)
}

// SumAfter totals the values whose timestamp is strictly after cutoff.
// NaN values are skipped.
func (s *Series) SumAfter(cutoff time.Time) float64 {
	total := 0.0
	for i, ts := range s.Timestamps {
		if i >= len(s.Values) {
			break
		}
		if ts.After(cutoff) && !math.IsNaN(s.Values[i]) {
			total += s.Values[i]
		}
	}
	return total
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the lag-n difference of the series.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || len(s.Values) <= n {
		return &Series{Values: []float64{}}
	}

	result := make([]float64, len(s.Values)-n)
	for i := n; i < len(s.Values); i++ {
		result[i-n] = s.Values[i] - s.Values[i-n]
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) > n {
		copy(timestamps, s.Timestamps[n:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_diff",
	}
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	d := s.DiffN(m)
	d.Name = s.Name + "_seasonal_diff"
	return d
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Log applies natural logarithm transformation. Non-positive values become NaN.
func (s *Series) Log() *Series {
	out := s.Copy()
	for i, v := range out.Values {
		if v > 0 {
			out.Values[i] = math.Log(v)
		} else {
			out.Values[i] = math.NaN()
		}
	}
	out.Name = s.Name + "_log"
	return out
}

// Exp undoes Log.
func (s *Series) Exp() *Series {
	out := s.Copy()
	for i, v := range out.Values {
		out.Values[i] = math.Exp(v)
	}
	out.Name = s.Name + "_exp"
	return out
}

// HasNonFinite reports whether any value is NaN or infinite.
func (s *Series) HasNonFinite() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// ResampleDaily sums values into calendar-day buckets and returns one row per
// day from the first to the last observed day. Days without observations are
// zero.
func (s *Series) ResampleDaily() (*Series, error) {
	if len(s.Timestamps) != len(s.Values) {
		return nil, errors.New("resample requires one timestamp per value")
	}
	if len(s.Values) == 0 {
		return &Series{Values: []float64{}, Name: s.Name}, nil
	}

	buckets := make(map[time.Time]float64, len(s.Values))
	days := make([]time.Time, 0, len(s.Values))
	for i, ts := range s.Timestamps {
		day := Truncate(ts)
		if _, ok := buckets[day]; !ok {
			days = append(days, day)
		}
		buckets[day] += s.Values[i]
	}
	sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })

	first, last := days[0], days[len(days)-1]
	n := int(last.Sub(first)/Day) + 1
	out := New(first, make([]float64, n))
	for i, day := range out.Timestamps {
		out.Values[i] = buckets[day]
	}
	out.Name = s.Name
	return out, nil
}

// BackfillZeros replaces each zero value with the next later non-zero value.
// Zeros after the last non-zero value are left as they are.
func (s *Series) BackfillZeros() *Series {
	out := s.Copy()
	next := 0.0
	for i := len(out.Values) - 1; i >= 0; i-- {
		if out.Values[i] == 0 {
			out.Values[i] = next
			continue
		}
		next = out.Values[i]
	}
	return out
}

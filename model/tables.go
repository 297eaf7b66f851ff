package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sartorproj/ridecast/accuracy"
	"github.com/sartorproj/ridecast/sarima"
	"github.com/sartorproj/ridecast/timeseries"
)

// Result is one neighborhood's row in the results table.
type Result struct {
	Neighborhood string
	Model        *sarima.Model
	Order        sarima.Order
	Seasonal     sarima.SeasonalOrder
	Logged       bool
	Scores       accuracy.Scores

	// Forecast is dated on the held-out rows, on the scale the model was fit on.
	Forecast *timeseries.Series

	ActualAfterCutoff    float64
	PredictedAfterCutoff float64
	Delta                float64

	AIC float64
	BIC float64
}

// Results is keyed by neighborhood and keeps first-insertion order.
type Results struct {
	names []string
	rows  map[string]*Result
}

// NewResults returns an empty results table.
func NewResults() *Results {
	return &Results{rows: make(map[string]*Result)}
}

// Set inserts or replaces the row for r.Neighborhood.
func (t *Results) Set(r *Result) {
	if _, ok := t.rows[r.Neighborhood]; !ok {
		t.names = append(t.names, r.Neighborhood)
	}
	t.rows[r.Neighborhood] = r
}

// Get returns the row for a neighborhood.
func (t *Results) Get(neighborhood string) (*Result, bool) {
	r, ok := t.rows[neighborhood]
	return r, ok
}

// Neighborhoods lists the rows in first-insertion order.
func (t *Results) Neighborhoods() []string {
	return append([]string(nil), t.names...)
}

// Len is the number of rows.
func (t *Results) Len() int {
	return len(t.names)
}

// Predictions holds one forecast column per neighborhood over a shared date
// index. Dates a column has no forecast for are NaN.
type Predictions struct {
	Dates   []time.Time
	names   []string
	columns map[string][]float64
}

// NewPredictions creates a table over dates. The index grows to cover the
// dates of every column written, so a nil index is fine.
func NewPredictions(dates []time.Time) *Predictions {
	p := &Predictions{columns: make(map[string][]float64)}
	p.extend(dates)
	return p
}

// Set writes a column, aligning values to the index by calendar day. Dates
// missing from the index are added and other columns are NaN on them.
func (p *Predictions) Set(neighborhood string, dates []time.Time, values []float64) error {
	if len(dates) != len(values) {
		return fmt.Errorf("model: %d prediction dates for %d values", len(dates), len(values))
	}
	p.extend(dates)

	byDay := make(map[int64]float64, len(dates))
	for i, d := range dates {
		byDay[dayKey(d)] = values[i]
	}

	if _, ok := p.columns[neighborhood]; !ok {
		p.names = append(p.names, neighborhood)
	}
	p.columns[neighborhood] = p.align(byDay)
	return nil
}

// extend adds the days of dates the index lacks, keeps it sorted, and
// realigns the existing columns.
func (p *Predictions) extend(dates []time.Time) {
	have := make(map[int64]bool, len(p.Dates))
	for _, d := range p.Dates {
		have[dayKey(d)] = true
	}
	old := p.Dates
	grown := append([]time.Time(nil), old...)
	for _, d := range dates {
		if k := dayKey(d); !have[k] {
			have[k] = true
			grown = append(grown, d)
		}
	}
	if len(grown) == len(old) {
		return
	}
	sort.Slice(grown, func(i, j int) bool { return grown[i].Before(grown[j]) })
	p.Dates = grown

	for name, col := range p.columns {
		byDay := make(map[int64]float64, len(col))
		for i, d := range old {
			byDay[dayKey(d)] = col[i]
		}
		p.columns[name] = p.align(byDay)
	}
}

// align lays values out over the index; days without a value are NaN.
func (p *Predictions) align(byDay map[int64]float64) []float64 {
	col := make([]float64, len(p.Dates))
	for i, d := range p.Dates {
		v, ok := byDay[dayKey(d)]
		if !ok {
			v = math.NaN()
		}
		col[i] = v
	}
	return col
}

func dayKey(d time.Time) int64 {
	return timeseries.Truncate(d).Unix()
}

// Column returns the forecast column of a neighborhood over the index.
func (p *Predictions) Column(neighborhood string) ([]float64, bool) {
	col, ok := p.columns[neighborhood]
	return col, ok
}

// Columns returns the neighborhoods with a column, in first-write order.
func (p *Predictions) Columns() []string {
	return append([]string(nil), p.names...)
}

// Series returns a column as a dated series, or nil if absent.
func (p *Predictions) Series(neighborhood string) *timeseries.Series {
	col, ok := p.columns[neighborhood]
	if !ok {
		return nil
	}
	return &timeseries.Series{
		Timestamps: append([]time.Time(nil), p.Dates...),
		Values:     append([]float64(nil), col...),
		Name:       neighborhood,
	}
}

// SumAfter totals a column over index dates strictly after cutoff.
func (p *Predictions) SumAfter(neighborhood string, cutoff time.Time) float64 {
	s := p.Series(neighborhood)
	if s == nil {
		return 0
	}
	return s.SumAfter(cutoff)
}

// GridRow is the best candidate found so far for a neighborhood.
type GridRow struct {
	Neighborhood      string
	Order             sarima.Order
	Seasonal          sarima.SeasonalOrder
	ExplainedVariance float64
}

// GridTable holds the current best row per neighborhood plus every write
// made to it, in order.
type GridTable struct {
	names   []string
	best    map[string]GridRow
	history map[string][]GridRow
}

// NewGridTable returns an empty grid table.
func NewGridTable() *GridTable {
	return &GridTable{
		best:    make(map[string]GridRow),
		history: make(map[string][]GridRow),
	}
}

// Record overwrites the neighborhood's row.
func (g *GridTable) Record(row GridRow) {
	if _, ok := g.best[row.Neighborhood]; !ok {
		g.names = append(g.names, row.Neighborhood)
	}
	g.best[row.Neighborhood] = row
	g.history[row.Neighborhood] = append(g.history[row.Neighborhood], row)
}

// Best returns the current row for a neighborhood.
func (g *GridTable) Best(neighborhood string) (GridRow, bool) {
	row, ok := g.best[neighborhood]
	return row, ok
}

// History returns every row written for a neighborhood, oldest first.
func (g *GridTable) History(neighborhood string) []GridRow {
	return append([]GridRow(nil), g.history[neighborhood]...)
}

// Rows returns the current rows in first-write order.
func (g *GridTable) Rows() []GridRow {
	rows := make([]GridRow, 0, len(g.names))
	for _, name := range g.names {
		rows = append(rows, g.best[name])
	}
	return rows
}

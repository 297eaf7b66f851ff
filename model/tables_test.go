package model

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/ridecast/sarima"
)

func TestResultsKeepsInsertionOrder(t *testing.T) {
	results := NewResults()
	results.Set(&Result{Neighborhood: "Midtown-Midtown South", Delta: 1})
	results.Set(&Result{Neighborhood: "Astoria", Delta: 2})
	results.Set(&Result{Neighborhood: "Midtown-Midtown South", Delta: 3})

	assert.Equal(t, []string{"Midtown-Midtown South", "Astoria"}, results.Neighborhoods())
	assert.Equal(t, 2, results.Len())

	r, ok := results.Get("Midtown-Midtown South")
	require.True(t, ok)
	assert.Equal(t, 3.0, r.Delta)

	_, ok = results.Get("Harlem")
	assert.False(t, ok)
}

func TestPredictionsAlignByDate(t *testing.T) {
	preds := NewPredictions(days(0, 1, 2, 3))

	require.NoError(t, preds.Set("Astoria", days(2, 3), []float64{20, 30}))
	require.NoError(t, preds.Set("Harlem", days(0, 1, 2, 3), []float64{1, 2, 3, 4}))

	col, ok := preds.Column("Astoria")
	require.True(t, ok)
	assert.True(t, math.IsNaN(col[0]) && math.IsNaN(col[1]))
	assert.Equal(t, []float64{20, 30}, col[2:])

	assert.Equal(t, []string{"Astoria", "Harlem"}, preds.Columns())
	assert.Equal(t, 50.0, preds.SumAfter("Astoria", jan1))
	assert.Equal(t, 9.0, preds.SumAfter("Harlem", jan1))
	assert.Equal(t, 0.0, preds.SumAfter("Bronx Park", jan1))
	assert.Nil(t, preds.Series("Bronx Park"))

	assert.Error(t, preds.Set("Astoria", days(1), []float64{1, 2}))
}

func TestPredictionsAdoptFirstIndex(t *testing.T) {
	preds := NewPredictions(nil)
	require.NoError(t, preds.Set("Astoria", days(5, 6, 7), []float64{1, 2, 3}))

	if diff := cmp.Diff(days(5, 6, 7), preds.Dates); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestPredictionsGrowIndexForLaterColumns(t *testing.T) {
	preds := NewPredictions(nil)

	// A short series written first must not limit a longer one written later.
	require.NoError(t, preds.Set("Bronx Park", days(3, 4), []float64{7, 8}))
	require.NoError(t, preds.Set("Astoria", days(0, 1, 2, 3, 4), []float64{1, 2, 3, 4, 5}))

	if diff := cmp.Diff(days(0, 1, 2, 3, 4), preds.Dates); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}

	astoria, ok := preds.Column("Astoria")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, astoria)
	assert.Equal(t, 15.0, preds.SumAfter("Astoria", jan1.AddDate(0, 0, -1)))

	bronx, ok := preds.Column("Bronx Park")
	require.True(t, ok)
	require.Len(t, bronx, 5)
	for _, v := range bronx[:3] {
		assert.True(t, math.IsNaN(v))
	}
	assert.Equal(t, []float64{7, 8}, bronx[3:])

	// Dates before and between existing ones keep the index sorted.
	require.NoError(t, preds.Set("Harlem", days(-2, 6), []float64{9, 10}))
	if diff := cmp.Diff(days(-2, 0, 1, 2, 3, 4, 6), preds.Dates); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
	astoria, _ = preds.Column("Astoria")
	assert.Equal(t, 15.0, preds.SumAfter("Astoria", jan1.AddDate(0, 0, -5)))
	assert.True(t, math.IsNaN(astoria[0]) && math.IsNaN(astoria[6]))
}

func TestGridTableHistory(t *testing.T) {
	table := NewGridTable()
	first := GridRow{Neighborhood: "Astoria", Order: sarima.Order{P: 1}, ExplainedVariance: 0.2}
	second := GridRow{Neighborhood: "Astoria", Order: sarima.Order{Q: 1}, ExplainedVariance: 0.6}
	other := GridRow{Neighborhood: "Harlem", ExplainedVariance: 0.1}

	table.Record(first)
	table.Record(other)
	table.Record(second)

	best, ok := table.Best("Astoria")
	require.True(t, ok)
	assert.Equal(t, second, best)

	if diff := cmp.Diff([]GridRow{first, second}, table.History("Astoria")); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]GridRow{second, other}, table.Rows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, table.History("Bronx Park"))
}

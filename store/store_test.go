package store

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/ridecast/accuracy"
	"github.com/sartorproj/ridecast/model"
	"github.com/sartorproj/ridecast/sarima"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ridecast.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ridecast.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}
}

func TestRuns(t *testing.T) {
	s := openStore(t)

	grid, err := s.NewRun(KindGrid)
	require.NoError(t, err)
	fit, err := s.NewRun(KindModel)
	require.NoError(t, err)
	assert.NotEqual(t, grid, fit)

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, fit, runs[0].ID)
	assert.Equal(t, KindModel, runs[0].Kind)
	assert.Equal(t, KindGrid, runs[1].Kind)
}

func TestUnknownRun(t *testing.T) {
	s := openStore(t)

	_, err := s.Results("missing")
	assert.ErrorIs(t, err, ErrUnknownRun)
	assert.ErrorIs(t, s.SaveGrid("missing", model.NewGridTable()), ErrUnknownRun)
}

func TestResultsRoundTrip(t *testing.T) {
	s := openStore(t)
	runID, err := s.NewRun(KindModel)
	require.NoError(t, err)

	results := model.NewResults()
	results.Set(&model.Result{
		Neighborhood:         "Midtown-Midtown South",
		Order:                sarima.Order{P: 1, D: 1, Q: 1},
		Seasonal:             sarima.SeasonalOrder{P: 1, D: 1, Q: 1, S: 7},
		Logged:               true,
		Scores:               accuracy.Scores{ExplainedVariance: 0.91, MAE: 0.08, RMSE: 0.11, R2: 0.9},
		ActualAfterCutoff:    120000,
		PredictedAfterCutoff: 118500,
		Delta:                1500,
		AIC:                  -812.5,
		BIC:                  math.NaN(),
	})
	results.Set(&model.Result{
		Neighborhood: "Astoria",
		Order:        sarima.Order{P: 2},
		Seasonal:     sarima.SeasonalOrder{D: 1, S: 7},
	})
	require.NoError(t, s.SaveResults(runID, results))

	got, err := s.Results(runID)
	require.NoError(t, err)

	want := []ResultRow{
		{
			Neighborhood: "Astoria",
			Order:        sarima.Order{P: 2},
			Seasonal:     sarima.SeasonalOrder{D: 1, S: 7},
		},
		{
			Neighborhood:         "Midtown-Midtown South",
			Order:                sarima.Order{P: 1, D: 1, Q: 1},
			Seasonal:             sarima.SeasonalOrder{P: 1, D: 1, Q: 1, S: 7},
			Logged:               true,
			ExplainedVariance:    0.91,
			MAE:                  0.08,
			RMSE:                 0.11,
			R2:                   0.9,
			ActualAfterCutoff:    120000,
			PredictedAfterCutoff: 118500,
			Delta:                1500,
			AIC:                  -812.5,
			BIC:                  math.NaN(),
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("Results mismatch (-want +got):\n%s", diff)
	}

	// Saving again replaces rather than duplicates.
	require.NoError(t, s.SaveResults(runID, results))
	got, err = s.Results(runID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPredictionsRoundTrip(t *testing.T) {
	s := openStore(t)
	runID, err := s.NewRun(KindModel)
	require.NoError(t, err)

	day := func(d int) time.Time { return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC) }
	preds := model.NewPredictions([]time.Time{day(1), day(2), day(3)})
	require.NoError(t, preds.Set("Astoria", []time.Time{day(1), day(2), day(3)}, []float64{10, 11, 12}))
	require.NoError(t, preds.Set("Chinatown", []time.Time{day(2), day(3)}, []float64{5, 6}))
	require.NoError(t, s.SavePredictions(runID, preds))

	got, err := s.Predictions(runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Astoria", "Chinatown"}, got.Columns())
	require.Len(t, got.Dates, 3)
	assert.True(t, got.Dates[0].Equal(day(1)))

	col, ok := got.Column("Chinatown")
	require.True(t, ok)
	assert.True(t, math.IsNaN(col[0]))
	assert.Equal(t, []float64{5, 6}, col[1:])
}

func TestGridRoundTrip(t *testing.T) {
	s := openStore(t)
	runID, err := s.NewRun(KindGrid)
	require.NoError(t, err)

	weekly := sarima.SeasonalOrder{D: 1, S: 7}
	table := model.NewGridTable()
	table.Record(model.GridRow{Neighborhood: "Astoria", Order: sarima.Order{}, Seasonal: weekly, ExplainedVariance: 0.2})
	table.Record(model.GridRow{Neighborhood: "Astoria", Order: sarima.Order{P: 1}, Seasonal: weekly, ExplainedVariance: 0.6})
	table.Record(model.GridRow{Neighborhood: "Chinatown", Order: sarima.Order{Q: 1}, Seasonal: weekly, ExplainedVariance: 0.4})
	require.NoError(t, s.SaveGrid(runID, table))

	all, err := s.GridRows(runID)
	require.NoError(t, err)
	if diff := cmp.Diff(append(table.History("Astoria"), table.History("Chinatown")...), all); diff != "" {
		t.Errorf("GridRows mismatch (-want +got):\n%s", diff)
	}

	best, err := s.BestGridRows(runID)
	require.NoError(t, err)
	if diff := cmp.Diff(table.Rows(), best); diff != "" {
		t.Errorf("BestGridRows mismatch (-want +got):\n%s", diff)
	}
}

package model

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sartorproj/ridecast/timeseries"
)

var jan1 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// ridership builds n days of weekly-cycle counts with a gentle trend and
// autocorrelated multiplicative noise.
func ridership(n int, seed int64) *timeseries.Series {
	weekly := []float64{220, 240, 250, 245, 260, 180, 150}
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	u := 0.0
	for i := range values {
		u = 0.5*u + 0.04*rng.NormFloat64()
		values[i] = math.Round(weekly[i%7] * math.Exp(0.0005*float64(i)+u))
	}
	return timeseries.New(jan1, values)
}

func heldOutFrame(t *testing.T, n int, seed int64) *Frame {
	t.Helper()
	frame := NewFrame("Astoria", ridership(n, seed))
	require.NoError(t, frame.HoldOutFraction(0.1))
	return frame
}

// days returns jan1 offset by each day count.
func days(offsets ...int) []time.Time {
	out := make([]time.Time, len(offsets))
	for i, o := range offsets {
		out[i] = jan1.AddDate(0, 0, o)
	}
	return out
}

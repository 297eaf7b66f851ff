// Package timeseries provides the dated Series type used across ridecast.
//
// A Series is a pair of parallel slices: timestamps and values. Ridership
// series are daily, so most helpers work in calendar-day buckets (UTC
// midnight).
//
// # Creating a Series
//
//	series := timeseries.New(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), counts)
//
// # Daily Ridership
//
// Per-station rows are summed into days, and the handful of days with no
// recorded rides take the next non-zero day's count:
//
//	daily, err := raw.ResampleDaily()
//	filled := daily.BackfillZeros()
//
// # Transformations
//
//	diff := series.Diff()             // First difference
//	sdiff := series.SeasonalDiff(7)   // Weekly difference
//	logged := series.Log()            // Natural log
//	counts := logged.Exp()            // Back to counts
//
// # CSV
//
// Series files are two-column ds,y CSVs:
//
//	series, err := timeseries.LoadCSV("astoria.csv", nil)
//	err = timeseries.SaveCSV(series, "astoria.csv")
package timeseries

// Package ridecast forecasts daily bike-share ridership per neighborhood.
//
// Rides are aggregated per station and day, placed into neighborhoods by
// point-in-polygon lookup against a GeoJSON boundary file, and summed into one
// daily series per neighborhood. Each series is tested for stationarity and
// modeled with seasonal ARIMA, either by exhaustive grid search over orders
// or by a single fit that is scored on a held-out tail.
//
// # Quick Start
//
//	days, _ := rides.LoadStationDays("station_days.csv")
//	series, _ := rides.NeighborhoodSeries(days, "Astoria")
//
//	frame := model.NewFrame("Astoria", series)
//	frame.HoldOutFraction(0.1)
//
//	results, preds := model.NewResults(), model.NewPredictions(nil)
//	res, err := model.RunModel(results, preds, "Astoria", frame,
//	    sarima.Order{P: 1, D: 1, Q: 1}, sarima.SeasonalOrder{P: 1, D: 1, Q: 1, S: 7}, true)
//
// # Packages
//
//   - rides: ride CSV parsing, station-day aggregation and neighborhood series
//   - geo: neighborhood and borough lookup from GeoJSON boundaries
//   - timeseries: daily series data structures and utilities
//   - stats: Augmented Dickey-Fuller test, ACF/PACF and Ljung-Box
//   - sarima: Seasonal ARIMA estimation and forecasting
//   - model: hold-out frames, model runs, grid search and result tables
//   - accuracy: explained variance, MAE, RMSE and R-squared
//   - report: static and interactive forecast charts
//   - store: SQLite persistence of runs
//   - telemetry: Prometheus metrics for fits
//   - config: environment configuration
//
// The ridecast command in cmd/ridecast drives the whole pipeline.
package ridecast

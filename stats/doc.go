// Package stats provides the stationarity and autocorrelation tools used
// before fitting ridership models.
//
// # Stationarity
//
// The Augmented Dickey-Fuller test regresses the first difference on the
// lagged level, a constant and lagged differences. The number of lagged
// differences is chosen by AIC. The null hypothesis is a unit root:
//
//	res, err := stats.ADF(series, -1, true)
//	fmt.Printf("ADF: stat=%.4f, p=%.4f, lags=%d\n", res.Statistic, res.PValue, res.Lags)
//
// DickeyFuller wraps the test with an optional log transform and prints a
// one-line verdict. A p-value at or below 0.05 counts as stationary:
//
//	stationary, p, err := stats.DickeyFuller(counts, true, os.Stdout)
//	// Data is stationary. P-value of 0.0031
//
// # Autocorrelation Functions
//
//	acf := stats.ACF(series, 21)
//	pacf := stats.PACF(series, 21)
//	significant := stats.SignificantLags(acf, stats.ConfidenceBound(series.Len()))
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 14, p+q+P+Q)
//	if lb.PValue > 0.05 {
//	    // Residuals are white noise
//	}
package stats

package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/ridecast/timeseries"
)

// LjungBoxResult holds the portmanteau statistic of a residual series.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// White reports whether the residuals look like white noise, that is the
// no-autocorrelation null is kept at SignificanceLevel.
func (r *LjungBoxResult) White() bool {
	return r.PValue > SignificanceLevel
}

// LjungBox computes Q = n(n+2) * sum r_k^2/(n-k) over lags 1..lags and its
// chi-squared p-value on lags-fitdf degrees of freedom (at least one), where
// fitdf counts the fitted ARMA coefficients. It returns nil for fewer than ten
// observations or a constant series.
func LjungBox(series *timeseries.Series, lags, fitdf int) *LjungBoxResult {
	n := series.Len()
	if n < 10 || lags < 1 {
		return nil
	}
	lags = min(lags, n-1)

	r := ACF(series, lags)
	if r == nil {
		return nil
	}

	var q float64
	for k, rk := range r[1:] {
		q += rk * rk / float64(n-k-1)
	}
	q *= float64(n) * float64(n+2)

	dof := max(lags-fitdf, 1)
	return &LjungBoxResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}

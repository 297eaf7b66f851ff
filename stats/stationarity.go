package stats

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/ridecast/timeseries"
)

// SignificanceLevel is the p-value at or below which a series is called stationary.
const SignificanceLevel = 0.05

var (
	// ErrTooShort is returned when the series cannot support the lag regression.
	ErrTooShort = errors.New("stats: sample size is too short for the selected lag")
	// ErrNonFinite is returned when the series contains NaN or infinite values,
	// typically from taking the log of a zero count.
	ErrNonFinite = errors.New("stats: series contains non-finite values")
	// ErrDegenerate is returned when the regression is singular or fits exactly.
	ErrDegenerate = errors.New("stats: regression is singular")
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64 // Critical values at 1%, 5%, 10%
	ICBest       float64            // Lowest AIC seen during lag selection, NaN without autolag
}

// IsStationary reports whether the unit-root null is rejected at SignificanceLevel.
func (r *ADFResult) IsStationary() bool {
	return Stationary(r.PValue)
}

// Stationary applies the fixed threshold: p <= 0.05 is stationary.
func Stationary(pValue float64) bool {
	return pValue <= SignificanceLevel
}

// ADF performs the Augmented Dickey-Fuller test with a constant term.
// The null hypothesis is that the series has a unit root (is non-stationary).
//
// A negative maxLag selects the default ceil(12*(n/100)^(1/4)), capped at
// n/2-2. With autolag the number of lagged differences minimizing AIC over a
// common sample is chosen and the regression is refit on its full sample;
// otherwise maxLag lags are used.
func ADF(series *timeseries.Series, maxLag int, autolag bool) (*ADFResult, error) {
	if series.HasNonFinite() {
		return nil, ErrNonFinite
	}

	x := series.Values
	n := len(x)
	limit := n/2 - 2
	if maxLag < 0 {
		maxLag = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
		if maxLag > limit {
			maxLag = limit
		}
	}
	if maxLag < 0 || maxLag > limit {
		return nil, ErrTooShort
	}

	diff := series.Diff().Values

	// design regresses diff[t] on x[t], diff[t-1..t-lag] and a constant,
	// using rows t = start..len(diff)-1.
	design := func(lag, start int) (*mat.Dense, *mat.VecDense) {
		rows := len(diff) - start
		X := mat.NewDense(rows, lag+2, nil)
		y := mat.NewVecDense(rows, nil)
		for i := 0; i < rows; i++ {
			t := start + i
			y.SetVec(i, diff[t])
			X.Set(i, 0, x[t])
			for j := 1; j <= lag; j++ {
				X.Set(i, j, diff[t-j])
			}
			X.Set(i, lag+1, 1)
		}
		return X, y
	}

	usedLag := maxLag
	icBest := math.NaN()
	if autolag {
		icBest = math.Inf(1)
		for lag := 0; lag <= maxLag; lag++ {
			fit, err := ols(design(lag, maxLag))
			if err != nil {
				return nil, fmt.Errorf("adf lag %d: %w", lag, err)
			}
			if fit.aic < icBest {
				icBest = fit.aic
				usedLag = lag
			}
		}
	}

	fit, err := ols(design(usedLag, usedLag))
	if err != nil {
		return nil, fmt.Errorf("adf: %w", err)
	}

	tStat := fit.beta[0] / fit.se[0]

	return &ADFResult{
		Statistic:    tStat,
		PValue:       mackinnonPValue(tStat),
		Lags:         usedLag,
		NObs:         fit.nobs,
		CriticalVals: mackinnonCritical(fit.nobs),
		ICBest:       icBest,
	}, nil
}

// DickeyFuller tests a series (or its natural log) for stationarity. It
// returns the verdict and the ADF p-value and, when out is non-nil, writes a
// one-line verdict such as "Data is stationary. P-value of 0.0123".
func DickeyFuller(series *timeseries.Series, logTransform bool, out io.Writer) (bool, float64, error) {
	s := series
	if logTransform {
		s = series.Log()
	}

	res, err := ADF(s, -1, true)
	if err != nil {
		return false, math.NaN(), err
	}

	stationary := res.IsStationary()
	if out != nil {
		verdict := "Data is stationary."
		if !stationary {
			verdict = "Data is not stationary."
		}
		if _, err := fmt.Fprintf(out, "%s P-value of %.4f\n", verdict, res.PValue); err != nil {
			return stationary, res.PValue, err
		}
	}
	return stationary, res.PValue, nil
}

type olsFit struct {
	beta []float64
	se   []float64
	ssr  float64
	aic  float64
	nobs int
}

// ols fits y = X*beta by ordinary least squares and reports coefficient
// standard errors and the Gaussian AIC.
func ols(x *mat.Dense, y *mat.VecDense) (*olsFit, error) {
	n, k := x.Dims()
	if n <= k {
		return nil, ErrTooShort
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var xty, beta, fitted, resid mat.VecDense
	xty.MulVec(x.T(), y)
	beta.MulVec(&inv, &xty)
	fitted.MulVec(x, &beta)
	resid.SubVec(y, &fitted)

	ssr := mat.Dot(&resid, &resid)
	if ssr <= 0 {
		return nil, ErrDegenerate
	}

	sigma2 := ssr / float64(n-k)
	fit := &olsFit{
		beta: make([]float64, k),
		se:   make([]float64, k),
		ssr:  ssr,
		nobs: n,
	}
	for i := 0; i < k; i++ {
		fit.beta[i] = beta.AtVec(i)
		fit.se[i] = math.Sqrt(sigma2 * inv.At(i, i))
	}

	llf := -float64(n) / 2 * (math.Log(2*math.Pi) + math.Log(ssr/float64(n)) + 1)
	fit.aic = -2*llf + 2*float64(k)
	return fit, nil
}

// MacKinnon (1994) response surface for one variable with a constant.
const (
	tauMax  = 2.74
	tauMin  = -18.83
	tauStar = -1.61
)

var (
	tauSmallP = [3]float64{2.1659, 1.4412, 0.038269}
	tauLargeP = [4]float64{1.7339, 0.93202, -0.12745, -0.010368}

	// MacKinnon (2010) finite-sample critical value coefficients.
	tauCritical = map[string][4]float64{
		"1%":  {-3.43035, -6.5393, -16.786, -79.433},
		"5%":  {-2.86154, -2.8903, -4.234, -40.040},
		"10%": {-2.56677, -1.5384, -2.809, 0},
	}
)

// mackinnonPValue approximates the ADF p-value for the constant-only regression.
func mackinnonPValue(stat float64) float64 {
	switch {
	case math.IsNaN(stat):
		return math.NaN()
	case stat > tauMax:
		return 1
	case stat < tauMin:
		return 0
	}

	var z float64
	if stat <= tauStar {
		z = polyval(tauSmallP[:], stat)
	} else {
		z = polyval(tauLargeP[:], stat)
	}
	return distuv.UnitNormal.CDF(z)
}

// mackinnonCritical returns the 1%, 5% and 10% critical values for nobs observations.
func mackinnonCritical(nobs int) map[string]float64 {
	inv := 1 / float64(nobs)
	out := make(map[string]float64, len(tauCritical))
	for level, c := range tauCritical {
		out[level] = polyval(c[:], inv)
	}
	return out
}

// polyval evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func polyval(c []float64, x float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}
	return v
}

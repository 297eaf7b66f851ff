// Package sarima implements Seasonal ARIMA (SARIMA) models.
package sarima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/sartorproj/ridecast/stats"
	"github.com/sartorproj/ridecast/timeseries"
)

// DefaultMaxIter caps the Nelder-Mead search.
const DefaultMaxIter = 1000

var (
	ErrInvalidOrder     = errors.New("sarima: invalid model order")
	ErrInsufficientData = errors.New("sarima: insufficient data points for the specified order")
	ErrNotConverged     = errors.New("sarima: optimizer reached the iteration limit")
	ErrNotFitted        = errors.New("sarima: model must be fitted before forecasting")
	ErrNonFinite        = errors.New("sarima: series contains non-finite values")
)

// Order is the non-seasonal (p, d, q) order.
type Order struct {
	P int // AR order
	D int // Differencing order
	Q int // MA order
}

func (o Order) String() string {
	return fmt.Sprintf("(%d, %d, %d)", o.P, o.D, o.Q)
}

// SeasonalOrder is the seasonal (P, D, Q, s) order.
type SeasonalOrder struct {
	P int // Seasonal AR order
	D int // Seasonal differencing order
	Q int // Seasonal MA order
	S int // Seasonal period, 7 for daily data with a weekly cycle
}

func (o SeasonalOrder) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", o.P, o.D, o.Q, o.S)
}

func (o SeasonalOrder) empty() bool {
	return o.P == 0 && o.D == 0 && o.Q == 0
}

// Model represents a multiplicative SARIMA(p,d,q)(P,D,Q)s model.
type Model struct {
	Order    Order
	Seasonal SeasonalOrder
	MaxIter  int

	AR  []float64 // Non-seasonal AR coefficients
	MA  []float64 // Non-seasonal MA coefficients
	SAR []float64 // Seasonal AR coefficients
	SMA []float64 // Seasonal MA coefficients

	Intercept  float64 // Mean of the differenced series; zero when differenced
	Sigma2     float64
	LogLik     float64
	AIC        float64
	BIC        float64
	Iterations int

	fitted    bool
	data      []float64
	diffData  []float64
	residuals []float64
	start     int
}

// New creates an unfitted model with the default iteration cap.
func New(order Order, seasonal SeasonalOrder) *Model {
	return &Model{
		Order:    order,
		Seasonal: seasonal,
		MaxIter:  DefaultMaxIter,
	}
}

func (m *Model) String() string {
	return fmt.Sprintf("SARIMA%sx%s", m.Order, m.Seasonal)
}

func (m *Model) validate() error {
	o, s := m.Order, m.Seasonal
	if o.P < 0 || o.D < 0 || o.Q < 0 || s.P < 0 || s.D < 0 || s.Q < 0 || s.S < 0 {
		return fmt.Errorf("%w: negative term in %s x %s", ErrInvalidOrder, o, s)
	}
	if !s.empty() && s.S < 2 {
		return fmt.Errorf("%w: seasonal period %d must be at least 2", ErrInvalidOrder, s.S)
	}
	return nil
}

func (m *Model) period() int {
	if m.Seasonal.empty() {
		return 1
	}
	return m.Seasonal.S
}

func (m *Model) numParams() int {
	return m.Order.P + m.Order.Q + m.Seasonal.P + m.Seasonal.Q
}

// Fit estimates the model by conditional sum of squares. Coefficients are
// searched with Nelder-Mead in a tanh-transformed space that keeps each one
// inside (-1, 1).
func (m *Model) Fit(series *timeseries.Series) error {
	if err := m.validate(); err != nil {
		return err
	}
	if series.HasNonFinite() {
		return ErrNonFinite
	}

	m.fitted = false
	m.data = append([]float64(nil), series.Values...)

	chain := differences(m.data, m.Order.D, m.Seasonal.D, m.period())
	w := chain[len(chain)-1]
	m.diffData = w

	m.start = m.Order.P + m.Seasonal.P*m.period()
	nPar := m.numParams()
	if len(w)-m.start < nPar+10 {
		return fmt.Errorf("%w: %d differenced observations for %s", ErrInsufficientData, len(w), m)
	}

	m.Intercept = 0
	if m.Order.D == 0 && m.Seasonal.D == 0 {
		m.Intercept = meanOf(w)
	}

	x := m.initialParams()
	m.Iterations = 0
	if nPar > 0 {
		count := float64(len(w) - m.start)
		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				m.setParams(x)
				_, css := m.filter()
				if math.IsNaN(css) || math.IsInf(css, 0) {
					return math.MaxFloat64
				}
				return css / count
			},
		}
		maxIter := m.MaxIter
		if maxIter <= 0 {
			maxIter = DefaultMaxIter
		}
		settings := &optimize.Settings{
			MajorIterations: maxIter,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-12,
				Relative:   1e-7,
				Iterations: 40,
			},
		}

		res, err := optimize.Minimize(problem, x, settings, &optimize.NelderMead{})
		if res != nil && res.Status == optimize.IterationLimit {
			return fmt.Errorf("%w: %s after %d iterations", ErrNotConverged, m, res.MajorIterations)
		}
		if err != nil {
			return fmt.Errorf("sarima: optimize %s: %w", m, err)
		}
		x = res.X
		m.Iterations = res.MajorIterations
	}

	m.setParams(x)
	m.residuals, _ = m.filter()
	m.calculateIC()
	m.fitted = true
	return nil
}

// initialParams seeds AR terms from half the autocorrelation at their lag and
// MA terms at 0.1, returned in the unconstrained search space.
func (m *Model) initialParams() []float64 {
	o, s := m.Order, m.Seasonal
	x := make([]float64, 0, m.numParams())

	maxLag := o.P
	if s.P*m.period() > maxLag {
		maxLag = s.P * m.period()
	}
	var acf []float64
	if maxLag > 0 {
		acf = stats.ACF(&timeseries.Series{Values: m.diffData}, maxLag)
	}
	at := func(lag int) float64 {
		if lag < len(acf) {
			return 0.5 * acf[lag]
		}
		return 0
	}

	for i := 1; i <= o.P; i++ {
		x = append(x, unconstrain(at(i)))
	}
	for i := 0; i < o.Q; i++ {
		x = append(x, unconstrain(0.1))
	}
	for i := 1; i <= s.P; i++ {
		x = append(x, unconstrain(at(i*m.period())))
	}
	for i := 0; i < s.Q; i++ {
		x = append(x, unconstrain(0.1))
	}
	return x
}

// setParams unpacks search-space parameters into coefficients.
func (m *Model) setParams(x []float64) {
	o, s := m.Order, m.Seasonal
	coef := make([]float64, len(x))
	for i, v := range x {
		coef[i] = math.Tanh(v)
	}
	m.AR, coef = coef[:o.P:o.P], coef[o.P:]
	m.MA, coef = coef[:o.Q:o.Q], coef[o.Q:]
	m.SAR, coef = coef[:s.P:s.P], coef[s.P:]
	m.SMA = coef[:s.Q:s.Q]
}

// polynomials returns the expanded AR polynomial (1 - phi(B))(1 - Phi(B^s))
// and MA polynomial (1 + theta(B))(1 + Theta(B^s)).
func (m *Model) polynomials() (ar, ma []float64) {
	s := m.period()
	ar = polyMul(lagPoly(m.AR, 1, -1), lagPoly(m.SAR, s, -1))
	ma = polyMul(lagPoly(m.MA, 1, 1), lagPoly(m.SMA, s, 1))
	return ar, ma
}

// filter computes conditional residuals of the differenced series. Residuals
// before the first fully observed AR window are zero.
func (m *Model) filter() ([]float64, float64) {
	w := m.diffData
	ar, ma := m.polynomials()
	mu := m.Intercept

	e := make([]float64, len(w))
	css := 0.0
	for t := m.start; t < len(w); t++ {
		v := 0.0
		for k, a := range ar {
			v += a * (w[t-k] - mu)
		}
		for k := 1; k < len(ma) && t-k >= m.start; k++ {
			v -= ma[k] * e[t-k]
		}
		e[t] = v
		css += v * v
	}
	return e, css
}

// calculateIC sets Sigma2, LogLik, AIC and BIC from the conditional residuals.
func (m *Model) calculateIC() {
	resid := m.residuals[m.start:]
	n := float64(len(resid))
	k := float64(m.numParams() + 1)

	sse := 0.0
	for _, r := range resid {
		sse += r * r
	}
	m.Sigma2 = sse / n

	if m.Sigma2 > 0 {
		m.LogLik = -n / 2 * (math.Log(2*math.Pi*m.Sigma2) + 1)
	} else {
		m.LogLik = math.Inf(1)
	}
	m.AIC = -2*m.LogLik + 2*k
	m.BIC = -2*m.LogLik + k*math.Log(n)
}

// Forecast returns steps out-of-sample forecasts on the scale of the fitted
// series. Future shocks are zero and differencing is undone against the
// training history.
func (m *Model) Forecast(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, errors.New("sarima: steps must be at least 1")
	}

	ar, ma := m.polynomials()
	mu := m.Intercept
	n := len(m.diffData)

	w := make([]float64, n+steps)
	copy(w, m.diffData)
	e := make([]float64, n+steps)
	copy(e, m.residuals)

	for t := n; t < n+steps; t++ {
		v := mu
		for k := 1; k < len(ar) && t-k >= 0; k++ {
			v -= ar[k] * (w[t-k] - mu)
		}
		for k := 1; k < len(ma) && t-k >= 0; k++ {
			v += ma[k] * e[t-k]
		}
		w[t] = v
	}

	return undifference(m.data, w[n:], m.Order.D, m.Seasonal.D, m.period()), nil
}

// Residuals returns the conditional residuals of the differenced series.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.residuals...)
}

// Summary represents a model summary.
type Summary struct {
	Order      Order
	Seasonal   SeasonalOrder
	AR         []float64
	MA         []float64
	SAR        []float64
	SMA        []float64
	Intercept  float64
	Sigma2     float64
	AIC        float64
	BIC        float64
	LogLik     float64
	NObs       int
	Iterations int
	LjungBox   *stats.LjungBoxResult
}

// Summary returns a summary of the fitted model, or nil before Fit.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	resid := &timeseries.Series{Values: m.residuals[m.start:]}
	lags := 10
	if 2*m.period() > lags {
		lags = 2 * m.period()
	}

	return &Summary{
		Order:      m.Order,
		Seasonal:   m.Seasonal,
		AR:         m.AR,
		MA:         m.MA,
		SAR:        m.SAR,
		SMA:        m.SMA,
		Intercept:  m.Intercept,
		Sigma2:     m.Sigma2,
		AIC:        m.AIC,
		BIC:        m.BIC,
		LogLik:     m.LogLik,
		NObs:       len(m.data),
		Iterations: m.Iterations,
		LjungBox:   stats.LjungBox(resid, lags, m.numParams()),
	}
}

// differences returns the series followed by each successive difference:
// d lag-1 differences, then D seasonal differences at lag s.
func differences(values []float64, d, sd, s int) [][]float64 {
	chain := [][]float64{values}
	for i := 0; i < d+sd; i++ {
		lag := 1
		if i >= d {
			lag = s
		}
		prev := chain[len(chain)-1]
		next := make([]float64, 0, len(prev))
		for t := lag; t < len(prev); t++ {
			next = append(next, prev[t]-prev[t-lag])
		}
		chain = append(chain, next)
	}
	return chain
}

// undifference integrates forecasts of the fully differenced series back to
// the level of history, undoing the seasonal differences first.
func undifference(history, forecasts []float64, d, sd, s int) []float64 {
	chain := differences(history, d, sd, s)
	out := forecasts
	for level := len(chain) - 1; level >= 1; level-- {
		lag := 1
		if level > d {
			lag = s
		}
		hist := chain[level-1]
		next := make([]float64, len(out))
		for h := range out {
			var prev float64
			if h >= lag {
				prev = next[h-lag]
			} else {
				prev = hist[len(hist)+h-lag]
			}
			next[h] = out[h] + prev
		}
		out = next
	}
	return append([]float64(nil), out...)
}

// lagPoly builds 1 + sign*(c[0]B^lag + c[1]B^(2 lag) + ...).
func lagPoly(c []float64, lag int, sign float64) []float64 {
	p := make([]float64, len(c)*lag+1)
	p[0] = 1
	for i, v := range c {
		p[(i+1)*lag] = sign * v
	}
	return p
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// unconstrain maps a coefficient in (-1, 1) to the search space.
func unconstrain(c float64) float64 {
	return math.Atanh(math.Max(-0.9, math.Min(0.9, c)))
}

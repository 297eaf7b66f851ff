package stats

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/sartorproj/ridecast/timeseries"
)

var start = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

func ar1(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + rng.NormFloat64()
	}
	return values
}

func exponentialGrowth(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = 100*math.Exp(0.01*float64(i)) + rng.NormFloat64()
	}
	return values
}

func TestACF(t *testing.T) {
	series := timeseries.New(start, ar1(300, 0.8, 1))
	acf := ACF(series, 10)

	if acf == nil {
		t.Fatal("ACF returned nil")
	}
	if math.Abs(acf[0]-1.0) > 1e-10 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}
	if acf[1] < 0.5 {
		t.Errorf("Expected strong lag-1 autocorrelation, got %f", acf[1])
	}
}

func TestACFConstant(t *testing.T) {
	series := timeseries.New(start, []float64{4, 4, 4, 4})
	if acf := ACF(series, 2); acf != nil {
		t.Errorf("Expected nil ACF for constant series, got %v", acf)
	}
}

func TestPACF(t *testing.T) {
	series := timeseries.New(start, ar1(500, 0.7, 2))
	pacf := PACF(series, 10)

	if pacf == nil {
		t.Fatal("PACF returned nil")
	}
	if pacf[0] != 1 {
		t.Errorf("PACF at lag 0 should be 1, got %f", pacf[0])
	}
	if pacf[1] < 0.5 {
		t.Errorf("PACF at lag 1 seems low for AR(1) with phi=0.7: %f", pacf[1])
	}
}

func TestSignificantLags(t *testing.T) {
	values := []float64{1.0, 0.5, 0.3, 0.1, 0.05, -0.2, -0.5}

	significant := SignificantLags(values, 0.15)

	expected := []int{1, 2, 5, 6}
	if len(significant) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, significant)
	}
	for i, lag := range expected {
		if significant[i] != lag {
			t.Errorf("Expected %v, got %v", expected, significant)
		}
	}
	if b := ConfidenceBound(100); math.Abs(b-0.196) > 1e-12 {
		t.Errorf("Expected bound 0.196, got %f", b)
	}
}

func TestADFStationary(t *testing.T) {
	series := timeseries.New(start, ar1(400, 0.5, 3))
	result, err := ADF(series, -1, true)
	if err != nil {
		t.Fatalf("ADF failed: %v", err)
	}

	t.Logf("ADF Statistic: %f, P-Value: %f, Lags: %d", result.Statistic, result.PValue, result.Lags)

	if !result.IsStationary() {
		t.Errorf("Expected AR(1) series to be stationary, p=%f", result.PValue)
	}
	if result.Lags < 0 || result.Lags > 17 {
		t.Errorf("Selected lag %d outside default range", result.Lags)
	}
	if result.NObs != 400-1-result.Lags {
		t.Errorf("Expected %d observations, got %d", 400-1-result.Lags, result.NObs)
	}
	if math.IsNaN(result.ICBest) {
		t.Error("Expected ICBest with autolag")
	}
}

func TestADFExplosiveGrowth(t *testing.T) {
	series := timeseries.New(start, exponentialGrowth(300, 4))
	result, err := ADF(series, -1, true)
	if err != nil {
		t.Fatalf("ADF failed: %v", err)
	}
	if result.IsStationary() {
		t.Errorf("Expected growing series to be non-stationary, p=%f", result.PValue)
	}
	if result.PValue != 1 {
		t.Errorf("Expected p-value 1 for a large positive statistic, got %f", result.PValue)
	}
}

func TestADFFixedLag(t *testing.T) {
	series := timeseries.New(start, ar1(200, 0.3, 5))
	result, err := ADF(series, 3, false)
	if err != nil {
		t.Fatalf("ADF failed: %v", err)
	}
	if result.Lags != 3 {
		t.Errorf("Expected 3 lags, got %d", result.Lags)
	}
	if !math.IsNaN(result.ICBest) {
		t.Errorf("Expected NaN ICBest without autolag, got %f", result.ICBest)
	}
}

func TestADFTooShort(t *testing.T) {
	series := timeseries.New(start, []float64{1, 2, 4})
	if _, err := ADF(series, -1, true); !errors.Is(err, ErrTooShort) {
		t.Errorf("Expected ErrTooShort, got %v", err)
	}
}

func TestStationaryThreshold(t *testing.T) {
	tests := []struct {
		p    float64
		want bool
	}{
		{0.001, true},
		{0.05, true},
		{0.0501, false},
		{0.9, false},
	}
	for _, tt := range tests {
		if got := Stationary(tt.p); got != tt.want {
			t.Errorf("Stationary(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestMacKinnonPValue(t *testing.T) {
	if p := mackinnonPValue(3); p != 1 {
		t.Errorf("Expected 1 above the max statistic, got %f", p)
	}
	if p := mackinnonPValue(-20); p != 0 {
		t.Errorf("Expected 0 below the min statistic, got %f", p)
	}

	// The asymptotic 5% critical value sits near p = 0.05.
	if p := mackinnonPValue(-2.86); math.Abs(p-0.05) > 0.005 {
		t.Errorf("Expected p near 0.05 at -2.86, got %f", p)
	}

	prev := 0.0
	for stat := -18.0; stat <= 2.7; stat += 0.1 {
		p := mackinnonPValue(stat)
		if p < prev-1e-12 {
			t.Errorf("p-value decreased at %f: %f < %f", stat, p, prev)
		}
		prev = p
	}
}

func TestMacKinnonCritical(t *testing.T) {
	crit := mackinnonCritical(100)

	expected := map[string]float64{
		"1%":  -3.43035 - 6.5393/100 - 16.786/1e4 - 79.433/1e6,
		"5%":  -2.86154 - 2.8903/100 - 4.234/1e4 - 40.040/1e6,
		"10%": -2.56677 - 1.5384/100 - 2.809/1e4,
	}
	for level, want := range expected {
		if math.Abs(crit[level]-want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", level, want, crit[level])
		}
	}
	if crit["1%"] >= crit["5%"] || crit["5%"] >= crit["10%"] {
		t.Errorf("Critical values out of order: %v", crit)
	}
}

func TestDickeyFuller(t *testing.T) {
	var buf bytes.Buffer
	stationary, p, err := DickeyFuller(timeseries.New(start, ar1(400, 0.5, 6)), false, &buf)
	if err != nil {
		t.Fatalf("DickeyFuller failed: %v", err)
	}
	if !stationary || p > SignificanceLevel {
		t.Errorf("Expected stationary verdict, got %v (p=%f)", stationary, p)
	}
	if !strings.HasPrefix(buf.String(), "Data is stationary. P-value of ") {
		t.Errorf("Unexpected output %q", buf.String())
	}

	buf.Reset()
	stationary, _, err = DickeyFuller(timeseries.New(start, exponentialGrowth(300, 7)), false, &buf)
	if err != nil {
		t.Fatalf("DickeyFuller failed: %v", err)
	}
	if stationary {
		t.Error("Expected non-stationary verdict")
	}
	if buf.String() != "Data is not stationary. P-value of 1.0000\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestDickeyFullerLogOfZero(t *testing.T) {
	values := exponentialGrowth(100, 8)
	values[10] = 0

	_, _, err := DickeyFuller(timeseries.New(start, values), true, nil)
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite, got %v", err)
	}
}

func TestLjungBox(t *testing.T) {
	series := timeseries.New(start, ar1(200, 0.9, 9))
	result := LjungBox(series, 10, 2)

	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	if result.DOF != 8 {
		t.Errorf("Expected 8 degrees of freedom, got %d", result.DOF)
	}
	if result.PValue > 0.001 || result.White() {
		t.Errorf("Expected autocorrelation to be detected, p=%f", result.PValue)
	}

	noise := timeseries.New(start, ar1(200, 0, 10))
	result = LjungBox(noise, 10, 0)
	if result == nil {
		t.Fatal("LjungBox returned nil for white noise")
	}
	if result.PValue < 0 || result.PValue > 1 {
		t.Errorf("p-value out of range: %f", result.PValue)
	}

	if LjungBox(timeseries.New(start, []float64{1, 2, 3}), 10, 0) != nil {
		t.Error("Expected nil for a short series")
	}
}

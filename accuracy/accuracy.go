// Package accuracy scores hold-out forecasts against observed ridership.
//
// The four regression metrics follow scikit-learn's conventions: variances are
// population variances, and when the actual values are constant explained
// variance and R² are 1 for a perfect prediction and 0 otherwise.
package accuracy

import (
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrLengthMismatch = errors.New("accuracy: actual and predicted lengths differ")
	ErrEmpty          = errors.New("accuracy: no observations to score")
)

// Scores holds the regression metrics for one forecast.
type Scores struct {
	ExplainedVariance float64
	MAE               float64
	RMSE              float64
	R2                float64
}

// Score computes explained variance, mean absolute error, root mean squared
// error and the coefficient of determination.
func Score(actual, predicted []float64) (Scores, error) {
	if len(actual) != len(predicted) {
		return Scores{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return Scores{}, ErrEmpty
	}

	resid := make([]float64, len(actual))
	floats.SubTo(resid, actual, predicted)

	n := float64(len(actual))
	sse := floats.Dot(resid, resid)
	abs := 0.0
	for _, r := range resid {
		abs += math.Abs(r)
	}

	varActual := stat.PopVariance(actual, nil)
	return Scores{
		ExplainedVariance: ratioScore(stat.PopVariance(resid, nil), varActual),
		MAE:               abs / n,
		RMSE:              math.Sqrt(sse / n),
		R2:                ratioScore(sse/n, varActual),
	}, nil
}

// ExplainedVariance is the grid-search objective.
func ExplainedVariance(actual, predicted []float64) (float64, error) {
	s, err := Score(actual, predicted)
	if err != nil {
		return math.NaN(), err
	}
	return s.ExplainedVariance, nil
}

// ratioScore returns 1 - num/den with the constant-denominator rule.
func ratioScore(num, den float64) float64 {
	if den == 0 {
		if num == 0 {
			return 1
		}
		return 0
	}
	return 1 - num/den
}

// Print writes the scores as four lines with thousands separators and four
// decimals, e.g. "MAE: 1,234.5678".
func Print(w io.Writer, s Scores) error {
	p := message.NewPrinter(language.English)
	_, err := p.Fprintf(w, "Explained Variance: %.4f\nMAE: %.4f\nRMSE: %.4f\nr^2: %.4f\n",
		s.ExplainedVariance, s.MAE, s.RMSE, s.R2)
	return err
}

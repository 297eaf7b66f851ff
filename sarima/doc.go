// Package sarima implements Seasonal ARIMA (SARIMA) models for daily ridership.
//
// A SARIMA(p,d,q)(P,D,Q)s model includes:
//   - Non-seasonal components: AR(p), I(d), MA(q)
//   - Seasonal components: SAR(P), SI(D), SMA(Q) at seasonal period s
//
// The seasonal and non-seasonal polynomials multiply, so a (1,0,0)(1,0,0,7)
// model carries an implied lag-8 term.
//
// # Basic Usage
//
//	model := sarima.New(sarima.Order{P: 1, Q: 1}, sarima.SeasonalOrder{P: 1, D: 1, Q: 1, S: 7})
//	if err := model.Fit(train); err != nil {
//	    log.Fatal(err)
//	}
//	forecasts, _ := model.Forecast(len(test))
//
// # Estimation
//
// Coefficients are estimated by conditional sum of squares. The search runs
// Nelder-Mead from gonum/optimize with each coefficient mapped through tanh,
// so every AR and MA term stays inside (-1, 1). Fit returns ErrNotConverged
// when the search uses up MaxIter iterations (1000 by default). An
// undifferenced series is modeled around its mean; a differenced one has no
// constant.
//
// # Model Selection
//
//	fmt.Printf("AIC: %.2f, BIC: %.2f\n", model.AIC, model.BIC)
//
// For exhaustive order selection by hold-out accuracy see model.GridSearch.
package sarima

// Package telemetry counts grid-search fits and exports them in the
// Prometheus text format.
package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sartorproj/ridecast/model"
	"github.com/sartorproj/ridecast/sarima"
)

// Recorder owns a registry of fit metrics for one CLI run.
type Recorder struct {
	Registry *prometheus.Registry

	fitsTotal   *prometheus.CounterVec
	fitsFailed  *prometheus.CounterVec
	fitDuration prometheus.Histogram
	bestScore   *prometheus.GaugeVec
}

// NewRecorder registers the fit metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		Registry: reg,
		fitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ridecast_fits_total",
			Help: "Total number of SARIMA candidates fitted.",
		}, []string{"neighborhood"}),
		fitsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ridecast_fits_failed_total",
			Help: "Total number of SARIMA candidates that failed to fit or forecast.",
		}, []string{"neighborhood", "reason"}),
		fitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ridecast_fit_duration_seconds",
			Help:    "Duration of a single candidate fit and forecast.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		bestScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ridecast_best_explained_variance",
			Help: "Best explained variance found per neighborhood.",
		}, []string{"neighborhood"}),
	}
}

// ObserveCandidate records one grid-search candidate. It fits
// model.GridSearch.OnCandidate.
func (r *Recorder) ObserveCandidate(c model.Candidate) {
	r.fitsTotal.WithLabelValues(c.Neighborhood).Inc()
	r.fitDuration.Observe(c.Duration.Seconds())
	if c.Err != nil {
		r.fitsFailed.WithLabelValues(c.Neighborhood, Reason(c.Err)).Inc()
		return
	}
	if c.Improved {
		r.bestScore.WithLabelValues(c.Neighborhood).Set(c.Score)
	}
}

// ObserveResult records the explained variance of a model run.
func (r *Recorder) ObserveResult(res *model.Result) {
	r.fitsTotal.WithLabelValues(res.Neighborhood).Inc()
	r.bestScore.WithLabelValues(res.Neighborhood).Set(res.Scores.ExplainedVariance)
}

// ObserveFailure counts a model run that returned err.
func (r *Recorder) ObserveFailure(neighborhood string, err error) {
	r.fitsTotal.WithLabelValues(neighborhood).Inc()
	r.fitsFailed.WithLabelValues(neighborhood, Reason(err)).Inc()
}

// WriteTextfile writes every metric to path for a node-exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}

// Reason maps a fit error onto a short label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, sarima.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, sarima.ErrNotConverged):
		return "not_converged"
	case errors.Is(err, sarima.ErrNonFinite):
		return "non_finite"
	case errors.Is(err, model.ErrEmptyHoldout):
		return "empty_holdout"
	default:
		return "other"
	}
}

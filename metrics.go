package robustforecast

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	collaboratorDetector  = "detector"
	collaboratorEstimator = "estimator"
)

// metrics records fit outcomes. With a nil registerer the collectors are created but not
// registered anywhere. Forecasters sharing a registerer share its collectors.
type metrics struct {
	fits     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	fits, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustforecast_fits_total",
			Help: "Total number of fits by the path that produced the forecast",
		},
		[]string{"path"},
	))
	if err != nil {
		return nil, err
	}
	failures, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustforecast_collaborator_failures_total",
			Help: "Total number of periodicity detector and decomposition estimator errors",
		},
		[]string{"collaborator"},
	))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "robustforecast_fit_duration_seconds",
			Help:    "Duration of fits in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	))
	if err != nil {
		return nil, err
	}
	return &metrics{
		fits:     fits,
		failures: failures,
		duration: duration,
	}, nil
}

// register adds the collector to reg, reusing the collector already registered under the
// same descriptor
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if reg == nil {
		return c, nil
	}
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("unable to register metrics, %w", err)
}

func (m *metrics) recordFit(path Path, seconds float64) {
	m.fits.WithLabelValues(string(path)).Inc()
	m.duration.WithLabelValues(string(path)).Observe(seconds)
}

func (m *metrics) recordFailure(collaborator string) {
	m.failures.WithLabelValues(collaborator).Inc()
}

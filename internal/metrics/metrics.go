// Package metrics declares the Prometheus collectors for calculator and API
// traffic.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Calculator labels.
const (
	CalcRisk       = "risk_profile"
	CalcMatch      = "fund_match"
	CalcProjection = "projection"
	CalcDFM        = "dfm"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adviser_calculations_total",
			Help: "Calculator invocations by calculator and outcome",
		},
		[]string{"calculator", "outcome"},
	)

	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adviser_calculation_duration_seconds",
			Help:    "Time spent inside a calculator",
			Buckets: []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"calculator"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adviser_http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		},
		[]string{"route", "method", "status"},
	)
)

// Observe records one calculator run. Errors matching any of rejected are
// counted as rejected input rather than failures.
func Observe(calculator string, start time.Time, err error, rejected ...error) {
	CalculationDuration.WithLabelValues(calculator).Observe(time.Since(start).Seconds())
	CalculationsTotal.WithLabelValues(calculator, outcome(err, rejected)).Inc()
}

func outcome(err error, rejected []error) string {
	if err == nil {
		return OutcomeOK
	}
	for _, r := range rejected {
		if errors.Is(err, r) {
			return OutcomeRejected
		}
	}
	return OutcomeError
}

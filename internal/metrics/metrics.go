// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jjplan"

var (
	// HTTPRequests counts served requests.
	// Labels: route (the mux pattern), code (status class such as 2xx)
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served",
	}, []string{"route", "code"})

	// HTTPDuration measures request latency.
	// Labels: route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route"})

	// ActiveSessions is the number of live navigation sessions
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "navigation",
		Name:      "active_sessions",
		Help:      "Live navigation sessions",
	})

	// NavigationOps counts navigation transitions.
	// Labels: op (start, push, pop, jump, choose), result (ok, error)
	NavigationOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "navigation",
		Name:      "operations_total",
		Help:      "Navigation state machine operations",
	}, []string{"op", "result"})

	// TapsLogged counts tap entries written.
	// Labels: category (roster category, or "other")
	TapsLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "taps",
		Name:      "logged_total",
		Help:      "Tap entries logged",
	}, []string{"category"})

	// DatasetReloads counts dataset reload attempts.
	// Labels: result (ok, error)
	DatasetReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "reloads_total",
		Help:      "Dataset reload attempts",
	}, []string{"result"})

	// SSEClients is the number of connected event stream clients
	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "clients",
		Help:      "Connected Server-Sent Events clients",
	})
)

// Result maps an error to the result label value
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// StatusClass maps an HTTP status code to its class label, e.g. 404 → "4xx"
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

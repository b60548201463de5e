// Package metrics exposes Prometheus collectors for the HTTP server, the
// rental lifecycle and the property status audit.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/minirent/internal/model"
)

const namespace = "minirent"

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide on the global one.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	drift       prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rental_transitions_total",
			Help:      "Committed rental status changes. from is \"none\" for new rentals.",
		}, []string{"from", "to"}),
		drift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "property_status_drift",
			Help:      "Properties whose status disagrees with their active rentals at the last audit.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.transitions,
		m.drift,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method string, code int, d time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

// RentalTransition counts a committed rental status change.
func (m *Metrics) RentalTransition(from, to model.RentalStatus) {
	fromLabel := "none"
	if from.Valid() {
		fromLabel = from.String()
	}
	m.transitions.WithLabelValues(fromLabel, to.String()).Inc()
}

// SetStatusDrift records the result of the latest status audit.
func (m *Metrics) SetStatusDrift(n int) {
	m.drift.Set(float64(n))
}

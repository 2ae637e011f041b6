package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "frontdesk"

// Metrics holds the service collectors on a private registry.
// All methods are safe on a nil receiver so callers may run without metrics.
type Metrics struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	photoUploads *prometheus.CounterVec
	sheetsErrors *prometheus.CounterVec
	lateRentals  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rental_transitions_total",
			Help:      "Rental lifecycle transitions by service type and status.",
		}, []string{"service_type", "from", "to"}),
		photoUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_uploads_total",
			Help:      "ID photo uploads by outcome.",
		}, []string{"outcome"}),
		sheetsErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed spreadsheet operations by error kind.",
		}, []string{"kind"}),
		lateRentals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "late_rentals",
			Help:      "Active rentals past their expected return at the last scan.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.transitions,
		m.photoUploads,
		m.sheetsErrors,
		m.lateRentals,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RecordTransition(serviceType, from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(serviceType, from, to).Inc()
}

func (m *Metrics) RecordPhotoUpload(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.photoUploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordStoreError(kind string) {
	if m == nil {
		return
	}
	m.sheetsErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetLateRentals(n int) {
	if m == nil {
		return
	}
	m.lateRentals.Set(float64(n))
}

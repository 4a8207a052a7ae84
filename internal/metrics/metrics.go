// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus metrics for geocoding, route building and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promoter_route"

// Metrics holds all collectors on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	geocodeAttempts *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	routeBuilds     *prometheus.CounterVec
	routeDuration   *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New returns Metrics with all collectors registered, including the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		geocodeAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_attempts_total",
			Help:      "Geocoding attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_lookups_total",
			Help:      "Geocoding cache lookups by provider and result.",
		}, []string{"provider", "result"}),
		routeBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_builds_total",
			Help:      "Route builds by outcome.",
		}, []string{"outcome"}),
		routeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_build_duration_seconds",
			Help:      "Route build duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	m.Registry.MustRegister(
		m.geocodeAttempts,
		m.cacheLookups,
		m.routeBuilds,
		m.routeDuration,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAttempt counts a single geocoding attempt.
func (m *Metrics) ObserveAttempt(provider, outcome string) {
	m.geocodeAttempts.WithLabelValues(provider, outcome).Inc()
}

// ObserveCache counts a cache lookup.
func (m *Metrics) ObserveCache(provider string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(provider, result).Inc()
}

// ObserveBuild counts a finished route build and records its duration.
func (m *Metrics) ObserveBuild(outcome string, duration time.Duration) {
	m.routeBuilds.WithLabelValues(outcome).Inc()
	m.routeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveHTTP records a served HTTP request. path should be the route pattern, not the raw URL.
func (m *Metrics) ObserveHTTP(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, path, code).Inc()
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chiwei-platform/lifecycle-tracker/internal/stats"
)

// Metrics owns every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	catalogCalls    *prometheus.CounterVec

	technologies   *prometheus.GaugeVec
	servers        *prometheus.GaugeVec
	remediations   *prometheus.GaugeVec
	exposedServers prometheus.Gauge
	orphanedApps   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifecycle_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifecycle_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		catalogCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifecycle_catalog_calls_total",
			Help: "Software catalog lookups by outcome (ok, error, cached).",
		}, []string{"outcome"}),
		technologies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lifecycle_technologies",
			Help: "Technologies by support status at the last dashboard computation.",
		}, []string{"support_status"}),
		servers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lifecycle_servers",
			Help: "Servers by status at the last dashboard computation.",
		}, []string{"status"}),
		remediations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lifecycle_remediations",
			Help: "Remediations by status at the last dashboard computation.",
		}, []string{"status"}),
		exposedServers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lifecycle_eol_exposed_servers",
			Help: "Active servers running at least one EOL technology.",
		}),
		orphanedApps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lifecycle_orphaned_applications",
			Help: "Applications with no servers and no technologies.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.catalogCalls,
		m.technologies,
		m.servers,
		m.remediations,
		m.exposedServers,
		m.orphanedApps,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RecordCatalogCall(outcome string) {
	m.catalogCalls.WithLabelValues(outcome).Inc()
}

// RecordSummary publishes the figures of the latest dashboard computation.
func (m *Metrics) RecordSummary(s stats.Summary) {
	for status, n := range s.TechnologyStatus {
		m.technologies.WithLabelValues(string(status)).Set(float64(n))
	}
	for status, n := range s.ServerStatus {
		m.servers.WithLabelValues(string(status)).Set(float64(n))
	}
	for status, n := range s.RemediationStatus {
		m.remediations.WithLabelValues(string(status)).Set(float64(n))
	}
	m.exposedServers.Set(float64(len(s.EOLExposure)))
	m.orphanedApps.Set(float64(len(s.OrphanedApplications)))
}

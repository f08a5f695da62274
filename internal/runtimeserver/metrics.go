package runtimeserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	downloads   *prometheus.CounterVec
	generations *prometheus.CounterVec
	tokens      prometheus.Counter
	streams     prometheus.Gauge
}

// NewMetrics registers the daemon collectors plus Go and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotegen_runtime",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotegen_runtime",
			Name:      "downloads_total",
			Help:      "Model downloads by outcome.",
		}, []string{"result"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotegen_runtime",
			Name:      "generations_total",
			Help:      "Generation requests by outcome.",
		}, []string{"result"}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quotegen_runtime",
			Name:      "tokens_streamed_total",
			Help:      "Tokens sent to clients.",
		}),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quotegen_runtime",
			Name:      "active_streams",
			Help:      "Open websocket streams.",
		}),
	}

	reg.MustRegister(
		m.requests, m.downloads, m.generations, m.tokens, m.streams,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

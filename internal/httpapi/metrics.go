package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the collectors for one Server. Each Server owns its registry
// so several can coexist in a process.
type metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheLookup *prometheus.CounterVec
	rateLimited prometheus.Counter
	catalogSize prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripgeo",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tripgeo",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"route"}),
		cacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripgeo",
			Name:      "search_cache_lookups_total",
			Help:      "Search cache lookups by result (hit or miss).",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripgeo",
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tripgeo",
			Name:      "catalog_cities",
			Help:      "Number of records in the loaded catalog.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.cacheLookup,
		m.rateLimited,
		m.catalogSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

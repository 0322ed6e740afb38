package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kairos", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kairos", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	StageInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kairos", Name: "stage_invocations_total", Help: "Pipeline stage runs."},
		[]string{"stage", "outcome"}, // outcome: ok|oracle_error|malformed|invalid|fallback
	)
	OracleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kairos", Name: "oracle_request_duration_seconds",
			Help:    "Oracle round-trip duration seconds.",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"stage"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kairos", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "status"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kairos", Name: "cache_events_total", Help: "Cache hits/misses/sets."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, StageInvocations, OracleLatency, ExternalRequests, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveStage(stage, outcome string) {
	StageInvocations.WithLabelValues(stage, outcome).Inc()
}

func ObserveOracle(stage string, dur time.Duration) {
	OracleLatency.WithLabelValues(stage).Observe(dur.Seconds())
}

func ObserveExternal(service string, status int) {
	ExternalRequests.WithLabelValues(service, strconv.Itoa(status)).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

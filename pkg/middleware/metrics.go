package middleware

import (
	"errors"
	"net/http"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "canvas_auth"

// NewMetricsHandlerWithDefaultRegistry serves the process-wide registry.
func NewMetricsHandlerWithDefaultRegistry() http.Handler {
	return NewMetricsHandler(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewMetricsHandler serves gatherer in the text exposition format. Scrapes
// are themselves counted in registerer.
func NewMetricsHandler(registerer prometheus.Registerer, gatherer prometheus.Gatherer) http.Handler {
	return promhttp.InstrumentMetricHandler(registerer, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

func NewRequestMetricsWithDefaultRegistry() alice.Constructor {
	return NewRequestMetrics(prometheus.DefaultRegisterer)
}

// NewRequestMetrics counts every request by status, times it by method and
// tracks how many are in flight.
func NewRequestMetrics(registerer prometheus.Registerer) alice.Constructor {
	requests := RegisterCollector(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "requests_total",
		Help:      "Total number of requests by HTTP status code.",
	}, []string{"code"}))
	inFlight := RegisterCollector(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "requests_in_flight",
		Help:      "Current number of requests being served.",
	}))
	latency := RegisterCollector(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "response_duration_seconds",
		Help:      "A histogram of request latencies.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"}))

	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerCounter(requests,
			promhttp.InstrumentHandlerInFlight(inFlight,
				promhttp.InstrumentHandlerDuration(latency, next)))
	}
}

// RegisterCollector registers c. When an equal collector is already
// registered that one is returned instead, so handlers can be rebuilt
// against the same registry.
func RegisterCollector[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	err := registerer.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector.(T)
	}
	panic(err)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics records calls made to the SmartSales REST API.
type BackendMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	breaker  *prometheus.GaugeVec
}

// NewBackendMetrics registers the backend client metrics on the provided registerer.
func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	if reg == nil {
		return &BackendMetrics{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_calls_total",
		Help: "Calls to the SmartSales backend by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_call_duration_seconds",
		Help:    "Latency of SmartSales backend calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	breaker := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "backend_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"breaker"})
	reg.MustRegister(calls, duration, breaker)
	return &BackendMetrics{calls: calls, duration: duration, breaker: breaker}
}

// ObserveCall records a finished backend call.
func (b *BackendMetrics) ObserveCall(endpoint, outcome string, elapsed time.Duration) {
	if b == nil || b.calls == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	b.calls.WithLabelValues(endpoint, normalizeLabel(outcome)).Inc()
	b.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// SetBreakerState publishes the breaker state as a gauge.
func (b *BackendMetrics) SetBreakerState(name string, state int) {
	if b == nil || b.breaker == nil {
		return
	}
	b.breaker.WithLabelValues(normalizeLabel(name)).Set(float64(state))
}

package rest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultSuccess        = "success"
	resultAPIError       = "api_error"
	resultTransportError = "transport_error"
)

// Metrics counts control-plane calls and their latency. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipelinekit",
				Subsystem: "controlplane",
				Name:      "api_calls_total",
				Help:      "Total number of control plane API calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pipelinekit",
				Subsystem: "controlplane",
				Name:      "api_latency_seconds",
				Help:      "Latency of control plane API calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.latency)
	}
	return m
}

// Calls exposes the call counter, mainly for tests.
func (m *Metrics) Calls() *prometheus.CounterVec {
	return m.calls
}

func (m *Metrics) observe(operation, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(operation, result).Inc()
	m.latency.WithLabelValues(operation).Observe(d.Seconds())
}

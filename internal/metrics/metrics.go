// Package metrics exposes Prometheus counters for invocations, generation
// outcomes and transmissions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric.
const Namespace = "xposter"

// Transmission results.
const (
	ResultSent     = "sent"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics holds the registered collectors. A nil *Metrics records nothing.
type Metrics struct {
	InvocationsTotal          *prometheus.CounterVec
	InvocationDurationSeconds prometheus.Histogram
	GenerationsTotal          *prometheus.CounterVec
	TransmissionsTotal        *prometheus.CounterVec
}

// New creates and registers the collectors on reg, or on the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		InvocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "invocations_total",
			Help:      "Scheduled invocations by selected strategy",
		}, []string{"strategy"}),
		InvocationDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Wall time of one invocation",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		GenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generations_total",
			Help:      "Generation cycles by generator and outcome",
		}, []string{"generator", "outcome"}),
		TransmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transmissions_total",
			Help:      "Transmission attempts by channel and result",
		}, []string{"channel", "result"}),
	}
}

// ObserveInvocation records one invocation of strategy.
func (m *Metrics) ObserveInvocation(strategy string, took time.Duration) {
	if m == nil {
		return
	}
	m.InvocationsTotal.WithLabelValues(strategy).Inc()
	m.InvocationDurationSeconds.Observe(took.Seconds())
}

// ObserveGeneration records a generation outcome.
func (m *Metrics) ObserveGeneration(generator, outcome string) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(generator, outcome).Inc()
}

// ObserveTransmission records a transmission result.
func (m *Metrics) ObserveTransmission(channel, result string) {
	if m == nil {
		return
	}
	m.TransmissionsTotal.WithLabelValues(channel, result).Inc()
}

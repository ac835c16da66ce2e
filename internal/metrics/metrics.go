// Package metrics exposes Prometheus instrumentation for model computations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "n2s"

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeMalformed = "malformed"
)

type Metrics struct {
	// ComputeTotal counts computations. Labels: source (api, scenario, sweep), outcome.
	ComputeTotal *prometheus.CounterVec
	// ComputeSeconds measures engine latency. Labels: source.
	ComputeSeconds *prometheus.HistogramVec
	// ClampedTotal counts results scaled down by the reduction ceiling.
	ClampedTotal prometheus.Counter
	// SweepSize observes the number of configs per sweep.
	SweepSize prometheus.Histogram
	// ScenariosSaved counts saved scenarios.
	ScenariosSaved prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers all metrics on reg. Passing a fresh prometheus.NewRegistry()
// keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ComputeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "computations_total",
			Help:      "Model computations by source and outcome",
		}, []string{"source", "outcome"}),
		ComputeSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "compute_seconds",
			Help:      "Time spent in the engine per request",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25, 1},
		}, []string{"source"}),
		ClampedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "clamped_total",
			Help:      "Results whose savings were scaled to the reduction ceiling",
		}),
		SweepSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "configs",
			Help:      "Configs per sweep request",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
		}),
		ScenariosSaved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scenario",
			Name:      "saved_total",
			Help:      "Scenarios saved",
		}),
		gatherer: reg,
	}
}

// ObserveCompute records one computation. A nil receiver is a no-op.
func (m *Metrics) ObserveCompute(source, outcome string, clamped bool, d time.Duration) {
	if m == nil {
		return
	}
	m.ComputeTotal.WithLabelValues(source, outcome).Inc()
	m.ComputeSeconds.WithLabelValues(source).Observe(d.Seconds())
	if clamped {
		m.ClampedTotal.Inc()
	}
}

func (m *Metrics) ObserveSweep(n int) {
	if m == nil {
		return
	}
	m.SweepSize.Observe(float64(n))
}

func (m *Metrics) ScenarioSaved() {
	if m == nil {
		return
	}
	m.ScenariosSaved.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

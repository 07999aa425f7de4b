// Package metrics exposes Prometheus metrics for resolution passes.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric unless NewCollector is given another
const DefaultNamespace = "descres"

// Collector records processor activity. It satisfies processor.Recorder.
type Collector struct {
	registry *prometheus.Registry

	occurrences  *prometheus.CounterVec
	findings     *prometheus.CounterVec
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	components   *prometheus.GaugeVec
}

// NewCollector creates a collector backed by its own registry
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),

		occurrences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "processor",
				Name:      "occurrences_total",
				Help:      "Marker occurrences dispatched, by marker type and result",
			},
			[]string{"marker", "result"},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "processor",
				Name:      "findings_total",
				Help:      "Findings reported, by code and severity",
			},
			[]string{"code", "severity"},
		),
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "processor",
				Name:      "passes_total",
				Help:      "Completed resolution passes, by bundle and whether they were abandoned",
			},
			[]string{"bundle", "abandoned"},
		),
		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "processor",
				Name:      "pass_duration_seconds",
				Help:      "Duration of a resolution pass",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"bundle"},
		),
		components: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "bundle",
				Name:      "components",
				Help:      "Component descriptors in the bundle after the last pass",
			},
			[]string{"bundle"},
		),
	}

	c.registry.MustRegister(
		c.occurrences,
		c.findings,
		c.passes,
		c.passDuration,
		c.components,
	)

	return c
}

// Registry returns the registry holding the collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveOccurrence counts one dispatched marker occurrence
func (c *Collector) ObserveOccurrence(marker, result string) {
	c.occurrences.WithLabelValues(marker, result).Inc()
}

// ObserveFinding counts one reported finding
func (c *Collector) ObserveFinding(code, severity string) {
	c.findings.WithLabelValues(code, severity).Inc()
}

// ObservePass records the end of a pass over a bundle
func (c *Collector) ObservePass(bundle string, seconds float64, components int, abandoned bool) {
	c.passes.WithLabelValues(bundle, strconv.FormatBool(abandoned)).Inc()
	c.passDuration.WithLabelValues(bundle).Observe(seconds)
	c.components.WithLabelValues(bundle).Set(float64(components))
}

// Package metrics exposes dispatcher activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "hiera"

// Lookup outcomes used as the "outcome" label.
const (
	OutcomeFound = "found"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Collector records backend lookups and instantiations. It implements lookup.Observer.
type Collector struct {
	registry        *prometheus.Registry
	backendLookups  *prometheus.CounterVec
	lookupDuration  *prometheus.HistogramVec
	backendsCreated *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry, including Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	collector := &Collector{
		registry: prometheus.NewRegistry(),
		backendLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_lookups_total",
				Help:      "Total number of backend lookups by outcome",
			},
			[]string{"backend", "outcome"},
		),
		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_lookup_duration_seconds",
				Help:      "Backend lookup duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		backendsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backends_created_total",
				Help:      "Total number of backend instances created",
			},
			[]string{"backend"},
		),
	}

	collector.registry.MustRegister(
		collector.backendLookups,
		collector.lookupDuration,
		collector.backendsCreated,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)

	return collector
}

// BackendCreated implements lookup.Observer.
func (c *Collector) BackendCreated(name string) {
	c.backendsCreated.WithLabelValues(name).Inc()
}

// BackendLookup implements lookup.Observer.
func (c *Collector) BackendLookup(name string, found bool, err error, elapsed time.Duration) {
	outcome := OutcomeMiss

	switch {
	case err != nil:
		outcome = OutcomeError
	case found:
		outcome = OutcomeFound
	}

	c.backendLookups.WithLabelValues(name, outcome).Inc()
	c.lookupDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}) //nolint:exhaustruct
}

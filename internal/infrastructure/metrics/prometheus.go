// Package metrics exposes version lifecycle counters through Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "versionctl"

// Recorder counts lifecycle outcomes on its own registry
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	skipLocks  *prometheus.CounterVec
}

// NewRecorder creates a recorder with a fresh registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "operations_total",
			Help:      "Version lifecycle operations by outcome.",
		}, []string{"operation", "outcome"}),
		skipLocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "skip_lock_total",
			Help:      "Writes that bypassed the optimistic lock check.",
		}, []string{"actor"}),
	}
	r.registry.MustRegister(r.operations, r.skipLocks)
	return r
}

// RecordOperation counts one operation outcome
func (r *Recorder) RecordOperation(operation, outcome string) {
	r.operations.WithLabelValues(operation, outcome).Inc()
}

// RecordSkipLock counts one audited lock bypass
func (r *Recorder) RecordSkipLock(actor string) {
	r.skipLocks.WithLabelValues(actor).Inc()
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

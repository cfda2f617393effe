// Package metrics counts retrievals and store operations for one process
// and can export them in the Prometheus textfile format, for node_exporter's
// textfile collector to pick up after each invocation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Store operation statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Recorder owns a private registry so nothing leaks into the global one.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	retrievals *prometheus.CounterVec
	requested  prometheus.Counter
	released   prometheus.Counter
	storeOps   *prometheus.CounterVec
}

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		retrievals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keymaster_retrievals_total",
				Help: "Retrieval batches by authentication outcome",
			},
			[]string{"outcome"},
		),
		requested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keymaster_secrets_requested_total",
			Help: "Distinct secret names requested across all batches",
		}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keymaster_secrets_released_total",
			Help: "Secrets released after a passing challenge",
		}),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keymaster_store_operations_total",
				Help: "Secret store writes and deletes by status",
			},
			[]string{"operation", "status"},
		),
	}
	r.registry.MustRegister(r.retrievals, r.requested, r.released, r.storeOps)
	return r
}

// ObserveRetrieval records one retrieval batch.
func (r *Recorder) ObserveRetrieval(outcome string, requested, released int) {
	if r == nil {
		return
	}
	r.retrievals.WithLabelValues(outcome).Inc()
	r.requested.Add(float64(requested))
	r.released.Add(float64(released))
}

// ObserveStoreOperation records a store write or delete.
func (r *Recorder) ObserveStoreOperation(operation string, err error) {
	if r == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	r.storeOps.WithLabelValues(operation, status).Inc()
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile atomically writes the current values to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

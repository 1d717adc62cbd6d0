// Package metrics records engine executions as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/metakernel/internal/engine"
)

const namespace = "metakernel"

// Recorder is an engine.Observer backed by a private Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	executions *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder with its collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.executions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "executions_total",
			Help:      "Commands executed, by command, entity type and status",
		},
		[]string{"command", "entity_type", "status"},
	)

	r.failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "failures_total",
			Help:      "Failed commands, by command and error kind",
		},
		[]string{"command", "kind"},
	)

	r.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "execution_duration_seconds",
			Help:      "Time from Execute to result",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"command"},
	)

	r.registry.MustRegister(r.executions, r.failures, r.duration)
	return r
}

// ObserveExecution implements engine.Observer.
func (r *Recorder) ObserveExecution(o engine.Observation) {
	entityType := o.EntityType
	if entityType == "" {
		entityType = "none"
	}
	command := string(o.Command)
	r.executions.WithLabelValues(command, entityType, string(o.Status)).Inc()
	r.duration.WithLabelValues(command).Observe(o.Elapsed.Seconds())
	if o.Kind != "" {
		r.failures.WithLabelValues(command, string(o.Kind)).Inc()
	}
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

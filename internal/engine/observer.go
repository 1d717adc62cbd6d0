package engine

import (
	"time"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Observation describes one finished execution.
type Observation struct {
	Command    types.CommandType
	Entity     string
	EntityType string // Empty when dispatch did not run.
	Status     types.Status
	Kind       Kind // Set for failures.
	Elapsed    time.Duration
}

// Observer receives an Observation after every execution.
type Observer interface {
	ObserveExecution(o Observation)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(o Observation)

// ObserveExecution calls f.
func (f ObserverFunc) ObserveExecution(o Observation) { f(o) }

type noopObserver struct{}

func (noopObserver) ObserveExecution(Observation) {}

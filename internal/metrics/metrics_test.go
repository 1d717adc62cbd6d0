package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/metakernel/internal/engine"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

func TestObserveExecution(t *testing.T) {
	r := NewRecorder()

	r.ObserveExecution(engine.Observation{Command: types.CommandCreate, EntityType: "meta", Status: types.StatusCompleted, Elapsed: time.Millisecond})
	r.ObserveExecution(engine.Observation{Command: types.CommandCreate, EntityType: "meta", Status: types.StatusCompleted, Elapsed: 2 * time.Millisecond})
	r.ObserveExecution(engine.Observation{Command: types.CommandQuery, Status: types.StatusFailed, Kind: engine.KindConfiguration})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.executions.WithLabelValues("create", "meta", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.executions.WithLabelValues("query", "none", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("query", "configuration")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRegistryGathersAllFamilies(t *testing.T) {
	r := NewRecorder()
	r.ObserveExecution(engine.Observation{Command: types.CommandDelete, Status: types.StatusFailed, Kind: engine.KindExecution})

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"metakernel_engine_executions_total",
		"metakernel_engine_failures_total",
		"metakernel_engine_execution_duration_seconds",
	}, names)
}

func TestRecorderAsEngineObserver(t *testing.T) {
	r := NewRecorder()
	e := engine.New(engine.Options{Observer: r})
	require.NoError(t, e.RegisterStrategy(types.CommandQuery, types.StrategyFunc(
		func(context.Context, *types.CommandContext) (any, error) { return nil, nil })))

	_, err := e.Query(context.Background(), types.NewCommandContext("orders", nil))
	require.NoError(t, err)
	_, err = e.Create(context.Background(), types.NewCommandContext("orders", nil))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.executions.WithLabelValues("query", "none", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("create", "configuration")))
}

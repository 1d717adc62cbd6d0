package kernel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/metakernel/internal/engine"
	"github.com/mesh-intelligence/metakernel/internal/handlers"
	"github.com/mesh-intelligence/metakernel/internal/requestctx"
	"github.com/mesh-intelligence/metakernel/internal/strategy"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

const ordersManifest = `properties:
  - {id: symbol, name: Symbol, data_type: string}
  - {id: qty, name: Quantity, data_type: integer}
  - {id: note, name: Note, data_type: text, nullable: true}
models:
  - id: orders
    referenced_properties: [symbol, qty, note]
entity_types:
  orders: meta
`

func newKernel(t *testing.T, dataDir string, opts ...func(*Options)) *Kernel {
	t.Helper()
	defs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(defs, "orders.yaml"), []byte(ordersManifest), 0o644))

	o := Options{Config: types.Config{
		Backend:        types.BackendSQLite,
		DataDir:        dataDir,
		DefinitionsDir: defs,
	}}
	for _, fn := range opts {
		fn(&o)
	}
	k, err := New(o)
	require.NoError(t, err)
	require.NoError(t, k.Attach(context.Background()))
	t.Cleanup(func() { k.Close() })
	return k
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Options{Config: types.Config{Backend: "oracle"}})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = New(Options{})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}

func TestNewWiresRegistries(t *testing.T) {
	k, err := New(Options{Config: types.Config{Backend: types.BackendNone}})
	require.NoError(t, err)

	assert.Equal(t, []string{handlers.NameValidation, handlers.NameAutofill, handlers.NameAudit}, k.Engine().PreHandlers())
	assert.Equal(t, []string{handlers.NameResultLog, handlers.NameDefinitionSync}, k.Engine().PostHandlers())
	for _, cmd := range types.CommandTypes {
		_, ok := k.Engine().Strategy(cmd)
		assert.True(t, ok, "strategy for %s", cmd)
	}
	for _, name := range []string{strategy.EntityProperties, strategy.EntityModels, strategy.EntityComponents} {
		assert.Equal(t, types.EntityTypeSystem, k.EntityTypes().Lookup(name))
	}
	assert.Equal(t, []string{BulkContextKind, engine.DefaultContextKind}, k.Factories().Kinds())
	assert.Nil(t, k.Store())
}

func TestRunMetaEntityLifecycle(t *testing.T) {
	k := newKernel(t, t.TempDir())
	ctx := context.Background()

	res, err := k.Run(ctx, Request{
		Command: types.CommandCreate,
		Entity:  "orders",
		Data:    types.NewPayload("symbol", "ACME", "qty", 3),
	})
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, res.Status)
	rec, ok := res.Data.(types.Record)
	require.True(t, ok)
	assert.NotEmpty(t, rec.ID)

	res, err = k.Run(ctx, Request{
		Command: types.CommandUpdate,
		Entity:  "orders",
		Data:    types.NewPayload("note", "rush"),
		Filter:  types.Eq("symbol", "ACME"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.WriteResult{Entity: "orders", Affected: 1, IDs: []string{rec.ID}}, res.Data)

	res, err = k.Run(ctx, Request{Command: types.CommandQuery, Entity: "orders", Filter: types.ByRecordID(rec.ID)})
	require.NoError(t, err)
	recs := res.Data.([]types.Record)
	require.Len(t, recs, 1)
	note, _ := recs[0].Data.Get("note")
	assert.Equal(t, "rush", note)
}

func TestRunRejectsUnknownFieldOnMetaEntity(t *testing.T) {
	k := newKernel(t, t.TempDir())

	res, err := k.Run(context.Background(), Request{
		Command: types.CommandCreate,
		Entity:  "orders",
		Data:    types.NewPayload("symbol", "ACME", "qty", 1, "colour", "red"),
	})
	require.Error(t, err)
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.ErrorIs(t, err, types.ErrUnknownField)
	assert.True(t, engine.IsExecution(err))
}

func TestRunUnfilteredUpdateNeedsBulkContext(t *testing.T) {
	k := newKernel(t, t.TempDir())
	ctx := context.Background()
	for _, sym := range []string{"ACME", "INIT"} {
		_, err := k.Run(ctx, Request{Command: types.CommandCreate, Entity: "ledger", Data: types.NewPayload("symbol", sym)})
		require.NoError(t, err)
	}

	res, err := k.Run(ctx, Request{Command: types.CommandUpdate, Entity: "ledger", Data: types.NewPayload("closed", true)})
	require.NoError(t, err)
	assert.Equal(t, types.StatusNotExecuted, res.Status)
	assert.NotEmpty(t, res.Reason)

	res, err = k.Run(ctx, Request{Command: types.CommandUpdate, Entity: "ledger", Data: types.NewPayload("closed", true), Kind: BulkContextKind})
	require.NoError(t, err)
	wr, ok := res.Data.(types.WriteResult)
	require.True(t, ok)
	assert.Equal(t, 2, wr.Affected)
	assert.Len(t, wr.IDs, 2)
}

func TestRunUnknownContextKind(t *testing.T) {
	k := newKernel(t, t.TempDir())
	res, err := k.Run(context.Background(), Request{Command: types.CommandQuery, Entity: "orders", Kind: "batch"})
	assert.ErrorIs(t, err, types.ErrUnknownContextKind)
	assert.Equal(t, types.StatusFailed, res.Status)
}

func TestStoredDefinitionsSurviveRestart(t *testing.T) {
	dataDir := t.TempDir()
	k := newKernel(t, dataDir)
	ctx := context.Background()

	res, err := k.Run(ctx, Request{
		Command: types.CommandCreate,
		Entity:  strategy.EntityProperties,
		Data:    types.NewPayload("id", "venue", "name", "Venue", "data_type", "string"),
	})
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, res.Status)
	_, ok := k.Catalog().Get("venue")
	require.True(t, ok, "created property is registered immediately")
	require.NoError(t, k.Close())

	k2 := newKernel(t, dataDir)
	venue, ok := k2.Catalog().Get("venue")
	require.True(t, ok)
	assert.Equal(t, types.DataTypeString, venue.DataType)
}

func TestUpdatedDefinitionReRegistersWhenFilterFieldChanges(t *testing.T) {
	k := newKernel(t, t.TempDir())
	ctx := context.Background()

	_, err := k.Run(ctx, Request{
		Command: types.CommandCreate,
		Entity:  strategy.EntityProperties,
		Data:    types.NewPayload("id", "color", "name", "Color", "data_type", "string"),
	})
	require.NoError(t, err)

	res, err := k.Run(ctx, Request{
		Command: types.CommandUpdate,
		Entity:  strategy.EntityProperties,
		Data:    types.NewPayload("data_type", "integer"),
		Filter:  types.Eq("data_type", "string").Where("id", types.OpEq, "color"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.WriteResult{Entity: strategy.EntityProperties, Affected: 1, IDs: []string{"color"}}, res.Data)

	color, ok := k.Catalog().Get("color")
	require.True(t, ok)
	assert.Equal(t, types.DataTypeInteger, color.DataType)
}

func TestAttachTwice(t *testing.T) {
	k := newKernel(t, t.TempDir())
	assert.ErrorIs(t, k.Attach(context.Background()), types.ErrAlreadyAttached)
}

func TestPermissionHandlerWhenAuthorizerSet(t *testing.T) {
	auth := handlers.NewRuleAuthorizer(true, handlers.Rule{
		Tenant:   "guest",
		Entity:   handlers.Wildcard,
		Commands: []types.CommandType{types.CommandDelete},
	})
	k := newKernel(t, t.TempDir(), func(o *Options) { o.Authorizer = auth })
	assert.Contains(t, k.Engine().PreHandlers(), handlers.NamePermission)

	ctx := requestctx.WithTenantID(context.Background(), "guest")
	res, err := k.Run(ctx, Request{Command: types.CommandDelete, Entity: "ledger", Filter: types.Eq("a", 1)})
	require.NoError(t, err)
	assert.Equal(t, types.StatusNotExecuted, res.Status)
}

func TestMetricsAndObserver(t *testing.T) {
	var seen []engine.Observation
	k := newKernel(t, t.TempDir(), func(o *Options) {
		o.Observer = engine.ObserverFunc(func(ob engine.Observation) { seen = append(seen, ob) })
	})

	_, err := k.Run(context.Background(), Request{Command: types.CommandQuery, Entity: "orders"})
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, "meta", seen[0].EntityType)
	n, err := testutil.GatherAndCount(k.Metrics().Registry(), "metakernel_engine_executions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPluginRegistrationUsesConfiguredKeywords(t *testing.T) {
	k, err := New(Options{Config: types.Config{Backend: types.BackendNone, PreHandlerKeywords: []string{"guard"}}})
	require.NoError(t, err)

	phase, err := k.Register("rate-guard", handlers.Validation{})
	require.NoError(t, err)
	assert.Equal(t, engine.PhasePre, phase)

	phase, err = k.Register("audit-trail", handlers.Validation{})
	require.NoError(t, err)
	assert.Equal(t, engine.PhasePost, phase)

	_, err = k.Register("broken", "not a handler")
	assert.ErrorIs(t, err, types.ErrMalformedHandler)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("METAKERNEL_DATA_DIR", "/env/data")
	t.Setenv("METAKERNEL_PRE_HANDLER_KEYWORDS", "guard,check")

	cfg, err := ApplyEnv(types.Config{Backend: types.BackendSQLite, DataDir: "/config/data", LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, []string{"guard", "check"}, cfg.PreHandlerKeywords)
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestRunCreateWithExplicitID(t *testing.T) {
	k := newKernel(t, t.TempDir())
	res, err := k.Run(context.Background(), Request{
		Command: types.CommandCreate,
		Entity:  "ledger",
		ID:      "l-1",
		Data:    types.NewPayload("amount", 10),
	})
	require.NoError(t, err)
	assert.Equal(t, "l-1", res.Data.(types.Record).ID)
}

// Package kernel assembles the metakernel: the property catalog, the model
// and entity type registries, the execution engine with its four
// strategies and built-in handlers, and an optional record store.
//
// Example:
//
//	k, err := kernel.New(kernel.Options{Config: types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".metakernel-db",
//	}})
//	if err != nil { ... }
//	if err := k.Attach(ctx); err != nil { ... }
//	defer k.Close()
//	res, err := k.Run(ctx, kernel.Request{
//	    Command: types.CommandCreate,
//	    Entity:  "orders",
//	    Data:    types.NewPayload("symbol", "ACME"),
//	})
package kernel

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/mesh-intelligence/metakernel/internal/catalog"
	"github.com/mesh-intelligence/metakernel/internal/engine"
	"github.com/mesh-intelligence/metakernel/internal/entitytype"
	"github.com/mesh-intelligence/metakernel/internal/handlers"
	"github.com/mesh-intelligence/metakernel/internal/loader"
	"github.com/mesh-intelligence/metakernel/internal/metrics"
	"github.com/mesh-intelligence/metakernel/internal/model"
	"github.com/mesh-intelligence/metakernel/internal/sqlite"
	"github.com/mesh-intelligence/metakernel/internal/strategy"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Version is the metakernel release.
const Version = "0.3.0"

// tracerName is the instrumentation scope of engine spans.
const tracerName = "github.com/mesh-intelligence/metakernel"

// BulkContextKind names the context factory that allows update and delete
// without a filter.
const BulkContextKind = "bulk"

// Options configures New.
type Options struct {
	Config types.Config

	// Logger receives kernel logs. Nil discards them.
	Logger logrus.FieldLogger

	// Store replaces the backend selected by Config.Backend.
	Store types.Store

	// Authorizer enables the permission handler when set.
	Authorizer handlers.Authorizer

	// Observer receives every execution in addition to the metrics
	// recorder.
	Observer engine.Observer
}

// Kernel is an assembled metakernel. It is safe for concurrent use once
// attached.
type Kernel struct {
	config types.Config
	log    logrus.FieldLogger

	catalog     *catalog.Catalog
	models      *model.Registry
	entityTypes *entitytype.Registry
	system      *strategy.SystemShapes
	engine      *engine.Engine
	factories   *engine.Factories
	dispatcher  *strategy.Dispatcher
	loader      *loader.Loader
	metrics     *metrics.Recorder

	mu       sync.Mutex
	backend  *sqlite.Backend
	attached bool
}

// New builds a kernel from opts. The store, if any, is not attached; call
// Attach before executing commands that reach storage.
func New(opts Options) (*Kernel, error) {
	config := opts.Config
	if config.Backend == "" && opts.Store != nil {
		config.Backend = types.BackendNone
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	k := &Kernel{config: config, log: log}
	k.catalog = catalog.New(catalog.WithLogger(log.WithField("component", "catalog")))
	k.models = model.New(k.catalog, log.WithField("component", "models"))
	k.entityTypes = entitytype.New()
	k.system = strategy.NewSystemShapes()
	for _, name := range k.system.Names() {
		k.entityTypes.Register(name, types.EntityTypeSystem)
	}
	k.loader = loader.New(k.catalog, k.models, k.entityTypes, log.WithField("component", "loader"))
	k.metrics = metrics.NewRecorder()

	classifier := engine.DefaultClassifier()
	if len(config.PreHandlerKeywords) > 0 {
		classifier = engine.KeywordClassifier(config.PreHandlerKeywords...)
	}
	var observer engine.Observer = k.metrics
	if opts.Observer != nil {
		observer = observers{k.metrics, opts.Observer}
	}
	k.engine = engine.New(engine.Options{
		Logger:     log.WithField("component", "engine"),
		Classifier: classifier,
		Observer:   observer,
		Tracer:     otel.Tracer(tracerName),
	})

	store := opts.Store
	if store == nil && config.Backend == types.BackendSQLite {
		k.backend = sqlite.NewBackend(log.WithField("component", "sqlite"))
		store = k.backend
	}
	k.dispatcher = &strategy.Dispatcher{
		EntityTypes: k.entityTypes,
		Models:      k.models,
		System:      k.system,
		Store:       store,
	}
	if err := strategy.Register(k.engine, k.dispatcher); err != nil {
		return nil, err
	}
	if err := k.registerHandlers(opts.Authorizer); err != nil {
		return nil, err
	}

	k.factories = engine.NewFactories()
	if err := k.factories.Register(BulkContextKind, bulkContext); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *Kernel) registerHandlers(auth handlers.Authorizer) error {
	pre := []types.Handler{
		handlers.Validation{},
		handlers.Autofill{},
		handlers.Audit{Logger: k.log.WithField("component", "audit")},
	}
	if auth != nil {
		pre = append(pre, handlers.Permission{Authorizer: auth})
	}
	post := []types.Handler{
		handlers.ResultLog{Logger: k.log.WithField("component", "result")},
		handlers.DefinitionSync{
			Catalog: k.catalog,
			Models:  k.models,
			Store:   k.dispatcher.Store,
			Logger:  k.log.WithField("component", "definitions"),
		},
	}
	for _, h := range pre {
		if err := k.engine.RegisterPreHandler(h.Name(), h); err != nil {
			return err
		}
	}
	for _, h := range post {
		if err := k.engine.RegisterPostHandler(h.Name(), h); err != nil {
			return err
		}
	}
	return nil
}

func bulkContext(entity string, data *types.Payload, filter types.Filter) *types.CommandContext {
	cc := types.NewCommandContext(entity, data).WithFilter(filter)
	cc.SetPlugin(handlers.AllowUnfiltered, true)
	return cc
}

// Attach attaches the configured backend, loads definition files from
// Config.DefinitionsDir, then registers the definitions stored in the
// definition entities. Stored definitions win over files.
func (k *Kernel) Attach(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.attached {
		return types.ErrAlreadyAttached
	}

	if k.backend != nil {
		if err := k.backend.Attach(ctx, k.config); err != nil {
			return fmt.Errorf("attaching %s backend: %w", k.config.Backend, err)
		}
	}
	if k.config.DefinitionsDir != "" {
		if _, err := k.LoadDefinitions(k.config.DefinitionsDir); err != nil {
			k.detachLocked()
			return err
		}
	}
	if err := k.loadStoredDefinitions(ctx); err != nil {
		k.detachLocked()
		return err
	}
	k.attached = true
	return nil
}

// loadStoredDefinitions registers records of the definition entities.
// Properties load first so models see the whole catalog. A record that no
// longer decodes is skipped with a warning.
func (k *Kernel) loadStoredDefinitions(ctx context.Context) error {
	store := k.dispatcher.Store
	if store == nil {
		return nil
	}
	for _, entity := range []string{strategy.EntityProperties, strategy.EntityComponents, strategy.EntityModels} {
		shape := types.EntityShape{Entity: entity, Type: types.EntityTypeSystem}
		shape.Fields, _ = k.system.Get(entity)
		recs, err := store.Query(ctx, shape, types.EmptyFilter())
		if err != nil {
			return fmt.Errorf("loading stored %s: %w", entity, err)
		}
		for _, rec := range recs {
			if err := handlers.ApplyDefinition(entity, rec, k.catalog, k.models); err != nil {
				k.log.WithError(err).WithFields(logrus.Fields{
					"entity": entity,
					"record": rec.ID,
				}).Warn("skipping stored definition")
			}
		}
	}
	return nil
}

// Close detaches the backend. Close on an unattached kernel is a no-op.
func (k *Kernel) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.attached {
		return nil
	}
	k.attached = false
	return k.detachLocked()
}

func (k *Kernel) detachLocked() error {
	if k.backend == nil {
		return nil
	}
	return k.backend.Detach()
}

// LoadDefinitions loads every definition file in dir into the registries.
func (k *Kernel) LoadDefinitions(dir string) (loader.Summary, error) {
	s, err := k.loader.LoadDir(dir)
	if err != nil {
		return s, err
	}
	k.log.WithFields(logrus.Fields{
		"dir":         dir,
		"files":       s.Files,
		"definitions": s.Total(),
		"skipped":     s.Skipped,
	}).Info("loaded definitions")
	return s, nil
}

// Request is one command for Run.
type Request struct {
	Command types.CommandType
	Entity  string
	Data    *types.Payload
	Filter  types.Filter

	// ID is the record ID a create should use. Empty lets autofill
	// assign one.
	ID string

	// Kind selects the context factory. Empty means the default.
	Kind string
}

// Run builds a context for req with the selected factory and executes it.
func (k *Kernel) Run(ctx context.Context, req Request) (types.Result, error) {
	cc, err := k.factories.Build(req.Kind, req.Entity, req.Data, req.Filter)
	if err != nil {
		ee := &engine.ExecutionError{Kind: engine.KindRequest, Command: req.Command, Entity: req.Entity, Err: err}
		return types.Result{Status: types.StatusFailed, Err: ee}, ee
	}
	if req.ID != "" {
		cc.SetRecordID(req.ID)
	}
	return k.engine.Execute(ctx, cc, req.Command)
}

// Execute runs a prepared context through the engine.
func (k *Kernel) Execute(ctx context.Context, cc *types.CommandContext, cmd types.CommandType) (types.Result, error) {
	return k.engine.Execute(ctx, cc, cmd)
}

// Register adds a plugin handler; the configured classifier picks its
// phase.
func (k *Kernel) Register(name string, v any) (engine.Phase, error) {
	return k.engine.Register(name, v)
}

// MapEntity maps an entity name to an entity type.
func (k *Kernel) MapEntity(name string, t types.EntityType) {
	k.entityTypes.Register(name, t)
}

// Config returns the validated configuration.
func (k *Kernel) Config() types.Config { return k.config }

// Catalog returns the property catalog.
func (k *Kernel) Catalog() *catalog.Catalog { return k.catalog }

// Models returns the model registry.
func (k *Kernel) Models() *model.Registry { return k.models }

// EntityTypes returns the entity type registry.
func (k *Kernel) EntityTypes() *entitytype.Registry { return k.entityTypes }

// Engine returns the execution engine.
func (k *Kernel) Engine() *engine.Engine { return k.engine }

// Factories returns the context factory table.
func (k *Kernel) Factories() *engine.Factories { return k.factories }

// Metrics returns the execution metrics recorder.
func (k *Kernel) Metrics() *metrics.Recorder { return k.metrics }

// Store returns the record store, or nil when none is configured.
func (k *Kernel) Store() types.Store { return k.dispatcher.Store }

type observers []engine.Observer

func (obs observers) ObserveExecution(o engine.Observation) {
	for _, ob := range obs {
		ob.ObserveExecution(o)
	}
}

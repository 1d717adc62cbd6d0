// Package engine is the command execution microkernel. It owns the pre and
// post handler registries and the strategy table, and runs every command
// through pre handlers, its strategy, and post handlers.
package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mesh-intelligence/metakernel/internal/chain"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Options configures an Engine. Zero values select a discarding logger,
// the default classifier, no observer and a no-op tracer.
type Options struct {
	Logger     logrus.FieldLogger
	Classifier Classifier
	Observer   Observer
	Tracer     trace.Tracer
}

// Engine executes commands. It is safe for concurrent use; handler and
// strategy registration may race with in-flight executions.
type Engine struct {
	pre  *chain.Registry
	post *chain.Registry

	mu         sync.RWMutex
	strategies map[types.CommandType]types.Strategy

	log      logrus.FieldLogger
	classify Classifier
	observer Observer
	tracer   trace.Tracer
}

// New creates an engine with no handlers and no strategies.
func New(opts Options) *Engine {
	e := &Engine{
		pre:        chain.NewRegistry(),
		post:       chain.NewRegistry(),
		strategies: make(map[types.CommandType]types.Strategy),
		log:        opts.Logger,
		classify:   opts.Classifier,
		observer:   opts.Observer,
		tracer:     opts.Tracer,
	}
	if e.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.log = l
	}
	if e.classify == nil {
		e.classify = DefaultClassifier()
	}
	if e.observer == nil {
		e.observer = noopObserver{}
	}
	if e.tracer == nil {
		e.tracer = noop.NewTracerProvider().Tracer("metakernel")
	}
	return e
}

// RegisterPreHandler registers h to run before strategies.
func (e *Engine) RegisterPreHandler(name string, h types.Handler) error {
	if err := checkHandler(name, h); err != nil {
		return err
	}
	e.pre.Add(name, h)
	e.log.WithFields(logrus.Fields{"handler": name, "phase": PhasePre}).Debug("registered handler")
	return nil
}

// RegisterPostHandler registers h to run after strategies.
func (e *Engine) RegisterPostHandler(name string, h types.Handler) error {
	if err := checkHandler(name, h); err != nil {
		return err
	}
	e.post.Add(name, h)
	e.log.WithFields(logrus.Fields{"handler": name, "phase": PhasePost}).Debug("registered handler")
	return nil
}

// Register is the plugin entry point. It accepts any value, rejects values
// that are not handlers, and registers the rest in the phase chosen by the
// classifier.
func (e *Engine) Register(name string, v any) (Phase, error) {
	h, ok := v.(types.Handler)
	if !ok {
		return PhasePost, fmt.Errorf("%w: %s is %T, not a handler", types.ErrMalformedHandler, name, v)
	}
	phase := e.classify(name)
	if phase == PhasePre {
		return phase, e.RegisterPreHandler(name, h)
	}
	return phase, e.RegisterPostHandler(name, h)
}

func checkHandler(name string, h types.Handler) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", types.ErrMalformedHandler)
	}
	if h == nil {
		return fmt.Errorf("%w: %s is nil", types.ErrMalformedHandler, name)
	}
	if h.Name() == "" {
		return fmt.Errorf("%w: %s reports an empty name", types.ErrMalformedHandler, name)
	}
	return nil
}

// RemoveHandler removes name from both phases. Removing an unknown name is
// a no-op.
func (e *Engine) RemoveHandler(name string) {
	pre := e.pre.Remove(name)
	post := e.post.Remove(name)
	if pre || post {
		e.log.WithField("handler", name).Debug("removed handler")
	}
}

// PreHandlers returns the pre handler names in execution order.
func (e *Engine) PreHandlers() []string { return e.pre.Names() }

// PostHandlers returns the post handler names in execution order.
func (e *Engine) PostHandlers() []string { return e.post.Names() }

// RegisterStrategy binds s to cmd, replacing any earlier binding.
func (e *Engine) RegisterStrategy(cmd types.CommandType, s types.Strategy) error {
	if !cmd.Valid() {
		return fmt.Errorf("%w: %q", types.ErrUnsupportedCommand, cmd)
	}
	if s == nil {
		return fmt.Errorf("%w: nil strategy for %s", types.ErrMalformedHandler, cmd)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies[cmd] = s
	return nil
}

// UnregisterStrategy removes the binding for cmd.
func (e *Engine) UnregisterStrategy(cmd types.CommandType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.strategies, cmd)
}

// Strategy returns the strategy bound to cmd.
func (e *Engine) Strategy(cmd types.CommandType) (types.Strategy, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.strategies[cmd]
	return s, ok
}

// Create executes a create command.
func (e *Engine) Create(ctx context.Context, cc *types.CommandContext) (types.Result, error) {
	return e.Execute(ctx, cc, types.CommandCreate)
}

// Update executes an update command.
func (e *Engine) Update(ctx context.Context, cc *types.CommandContext) (types.Result, error) {
	return e.Execute(ctx, cc, types.CommandUpdate)
}

// Delete executes a delete command.
func (e *Engine) Delete(ctx context.Context, cc *types.CommandContext) (types.Result, error) {
	return e.Execute(ctx, cc, types.CommandDelete)
}

// Query executes a query command.
func (e *Engine) Query(ctx context.Context, cc *types.CommandContext) (types.Result, error) {
	return e.Execute(ctx, cc, types.CommandQuery)
}

// Execute runs cmd against cc. Every call ends in exactly one status:
// completed with the strategy's data, not executed because a pre handler
// stopped the chain, or failed. A failure is also returned as an
// *ExecutionError.
//
// The strategy is looked up before the pre chain runs: a command with no
// bound strategy fails as a configuration error even when a pre handler
// would have rejected it.
//
// Handler lists are snapshotted when each chain is built, so concurrent
// registration never changes a chain that is already running.
func (e *Engine) Execute(ctx context.Context, cc *types.CommandContext, cmd types.CommandType) (res types.Result, err error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "metakernel.execute",
		trace.WithAttributes(attribute.String("metakernel.command", string(cmd))))
	defer func() {
		e.finish(span, cc, cmd, res, time.Since(start))
		span.End()
	}()

	if cc == nil {
		return e.fail(KindRequest, cmd, nil, "", types.ErrContextRequired)
	}
	span.SetAttributes(attribute.String("metakernel.entity", cc.EntityName))
	if strings.TrimSpace(cc.EntityName) == "" {
		return e.fail(KindRequest, cmd, cc, "", types.ErrEntityNameRequired)
	}
	if !cmd.Valid() {
		return e.fail(KindConfiguration, cmd, cc, "", fmt.Errorf("%w: %q", types.ErrUnsupportedCommand, cmd))
	}
	strategy, ok := e.Strategy(cmd)
	if !ok {
		return e.fail(KindConfiguration, cmd, cc, "", fmt.Errorf("%w: %s", types.ErrStrategyNotBound, cmd))
	}

	cc.Set(types.AttrCommandType, cmd)
	log := e.log.WithFields(logrus.Fields{"command": cmd, "entity": cc.EntityName})

	proceed, handler, herr := runChain(ctx, cc, e.pre.Snapshot())
	if herr != nil {
		return e.fail(KindExecution, cmd, cc, handler, herr)
	}
	if !proceed {
		reason := cc.Rejection()
		log.WithFields(logrus.Fields{"handler": handler, "reason": reason}).Debug("command not executed")
		return types.Result{Status: types.StatusNotExecuted, Reason: reason}, nil
	}

	data, serr := runStrategy(ctx, cc, strategy)
	if serr != nil {
		return e.fail(KindExecution, cmd, cc, "", serr)
	}
	cc.Set(types.AttrResult, data)

	proceed, handler, perr := runChain(ctx, cc, e.post.Snapshot())
	switch {
	case perr != nil:
		log.WithError(perr).WithField("handler", handler).Warn("post handler failed")
	case !proceed:
		log.WithField("handler", handler).Debug("post chain stopped")
	}

	return types.Result{Status: types.StatusCompleted, Data: data}, nil
}

func (e *Engine) fail(kind Kind, cmd types.CommandType, cc *types.CommandContext, handler string, cause error) (types.Result, error) {
	ee := &ExecutionError{Kind: kind, Command: cmd, Handler: handler, Err: cause}
	if cc != nil {
		ee.Entity = cc.EntityName
	}
	e.log.WithFields(logrus.Fields{
		"command": cmd,
		"entity":  ee.Entity,
		"handler": handler,
		"kind":    kind,
	}).WithError(cause).Error("command failed")
	return types.Result{Status: types.StatusFailed, Err: ee}, ee
}

func (e *Engine) finish(span trace.Span, cc *types.CommandContext, cmd types.CommandType, res types.Result, elapsed time.Duration) {
	o := Observation{Command: cmd, Status: res.Status, Elapsed: elapsed}
	if cc != nil {
		o.Entity = cc.EntityName
		if et, ok := cc.EntityType(); ok {
			o.EntityType = et.Key()
		}
	}
	if k, ok := KindOf(res.Err); ok {
		o.Kind = k
	}
	e.observer.ObserveExecution(o)

	span.SetAttributes(attribute.String("metakernel.status", string(res.Status)))
	if o.EntityType != "" {
		span.SetAttributes(attribute.String("metakernel.entity_type", o.EntityType))
	}
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
}

// runChain builds a chain over handlers and proceeds it. On failure or
// short circuit it also reports the handler that stopped the chain.
func runChain(ctx context.Context, cc *types.CommandContext, handlers []types.Handler) (ok bool, handler string, err error) {
	c := chain.New(handlers)
	defer func() {
		if r := recover(); r != nil {
			ok, handler, err = false, handlerName(c.Current()), fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	ok, err = c.Proceed(ctx, cc)
	if !ok {
		handler = handlerName(c.Current())
	}
	return ok, handler, err
}

func runStrategy(ctx context.Context, cc *types.CommandContext, s types.Strategy) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return s.Execute(ctx, cc)
}

func handlerName(h types.Handler) string {
	if h == nil {
		return ""
	}
	return h.Name()
}

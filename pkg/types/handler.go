package types

import "context"

// Handler is a named, ordered, conditionally participating unit of
// cross-cutting logic run before or after a strategy.
type Handler interface {
	// Name identifies the handler in registries and logs.
	Name() string

	// Order positions the handler; lower runs first, ties keep
	// registration order.
	Order() int

	// Supports reports whether the handler takes part for cc. Handlers
	// that do not support cc are skipped transparently.
	Supports(cc *CommandContext) bool

	// Handle runs the handler. Returning false stops the rest of the chain
	// (and the strategy, for pre handlers); it is a deliberate short
	// circuit, not an error. A handler continues the chain either by
	// returning true or by calling chain.Proceed itself.
	Handle(ctx context.Context, cc *CommandContext, chain Chain) (bool, error)
}

// Chain is the continuation handed to a handler.
type Chain interface {
	Proceed(ctx context.Context, cc *CommandContext) (bool, error)
}

// Strategy performs the core operation for one command type.
type Strategy interface {
	Execute(ctx context.Context, cc *CommandContext) (any, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, cc *CommandContext) (any, error)

// Execute calls f.
func (f StrategyFunc) Execute(ctx context.Context, cc *CommandContext) (any, error) {
	return f(ctx, cc)
}

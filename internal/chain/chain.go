// Package chain runs ordered handler pipelines and keeps the named handler
// registries they are built from.
package chain

import (
	"context"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Chain walks a fixed handler list with a cursor. A chain is built for one
// execution and is not safe for concurrent use.
//
// Proceed drives the walk. Each supported handler either continues by
// returning true, continues explicitly by calling Proceed itself, or stops
// the walk by returning false or an error. Once stopped, the chain stays
// aborted and every later Proceed returns false.
type Chain struct {
	handlers []types.Handler
	cursor   int
	current  types.Handler
	aborted  bool
}

var _ types.Chain = (*Chain)(nil)

// New builds a chain over a copy of handlers.
func New(handlers []types.Handler) *Chain {
	hs := make([]types.Handler, len(handlers))
	copy(hs, handlers)
	return &Chain{handlers: hs}
}

// Next advances the cursor to the next handler that supports cc and
// returns it. Unsupported handlers are skipped without being reported.
func (c *Chain) Next(cc *types.CommandContext) (types.Handler, bool) {
	for c.cursor < len(c.handlers) {
		h := c.handlers[c.cursor]
		c.cursor++
		if h.Supports(cc) {
			c.current = h
			return h, true
		}
	}
	c.current = nil
	return nil, false
}

// Current returns the handler most recently returned by Next.
func (c *Chain) Current() types.Handler {
	return c.current
}

// Aborted reports whether a handler stopped the chain.
func (c *Chain) Aborted() bool {
	return c.aborted
}

// Len returns the number of handlers in the chain, supported or not.
func (c *Chain) Len() int {
	return len(c.handlers)
}

// Proceed runs the remaining handlers. It returns true once the chain is
// exhausted, so an empty chain succeeds. Handler errors are returned as is.
func (c *Chain) Proceed(ctx context.Context, cc *types.CommandContext) (bool, error) {
	for !c.aborted {
		h, ok := c.Next(cc)
		if !ok {
			return true, nil
		}
		cont, err := h.Handle(ctx, cc, c)
		if err != nil {
			c.abort(h)
			return false, err
		}
		if !cont {
			c.abort(h)
			return false, nil
		}
	}
	return false, nil
}

// abort marks the chain stopped at h unless a nested Proceed already
// stopped it further along.
func (c *Chain) abort(h types.Handler) {
	if !c.aborted {
		c.aborted = true
		c.current = h
	}
}

package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// DefaultContextKind names the plain context factory.
const DefaultContextKind = "default"

// ContextFactory builds a command context for one request.
type ContextFactory func(entity string, data *types.Payload, filter types.Filter) *types.CommandContext

// Factories maps context kinds to factories, so hosts can pick a context
// flavour by name.
type Factories struct {
	mu sync.RWMutex
	m  map[string]ContextFactory
}

// NewFactories creates a table holding the default factory.
func NewFactories() *Factories {
	f := &Factories{m: make(map[string]ContextFactory)}
	f.m[DefaultContextKind] = func(entity string, data *types.Payload, filter types.Filter) *types.CommandContext {
		return types.NewCommandContext(entity, data).WithFilter(filter)
	}
	return f
}

// Register adds or replaces the factory for kind.
func (f *Factories) Register(kind string, fn ContextFactory) error {
	if kind == "" || fn == nil {
		return fmt.Errorf("%w: context factory %q", types.ErrMalformedHandler, kind)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[kind] = fn
	return nil
}

// Build creates a context with the factory registered for kind. An empty
// kind selects the default factory.
func (f *Factories) Build(kind, entity string, data *types.Payload, filter types.Filter) (*types.CommandContext, error) {
	if kind == "" {
		kind = DefaultContextKind
	}
	f.mu.RLock()
	fn, ok := f.m[kind]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownContextKind, kind)
	}
	return fn(entity, data, filter), nil
}

// Kinds returns the registered kinds sorted by name.
func (f *Factories) Kinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.m))
	for k := range f.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

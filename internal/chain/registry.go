package chain

import (
	"sort"
	"sync"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Entry is a registered handler with its registration sequence.
type Entry struct {
	Name    string
	Handler types.Handler
	Seq     uint64
}

// Sort orders entries by handler order, breaking ties by registration
// sequence. The sort is stable and idempotent.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		oi, oj := entries[i].Handler.Order(), entries[j].Handler.Order()
		if oi != oj {
			return oi < oj
		}
		return entries[i].Seq < entries[j].Seq
	})
}

// Registry holds handlers by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	seq     uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Add registers h under name. Replacing a name keeps its original
// registration sequence.
func (r *Registry) Add(name string, h types.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.entries[name]; ok {
		r.entries[name] = Entry{Name: name, Handler: h, Seq: prev.Seq}
		return
	}
	r.seq++
	r.entries[name] = Entry{Name: name, Handler: h, Seq: r.seq}
}

// Remove deletes name and reports whether it was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (types.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.Handler, ok
}

// Entries returns the registered entries in execution order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()
	Sort(out)
	return out
}

// Snapshot returns the handlers in execution order. The slice is owned by
// the caller; later registry changes do not affect it.
func (r *Registry) Snapshot() []types.Handler {
	entries := r.Entries()
	out := make([]types.Handler, len(entries))
	for i, e := range entries {
		out[i] = e.Handler
	}
	return out
}

// Names returns the registered names in execution order.
func (r *Registry) Names() []string {
	entries := r.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

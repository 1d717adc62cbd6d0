// Package entitytype maps entity names to their entity type.
package entitytype

import (
	"sort"
	"sync"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Registry maps entity names to entity types. Unmapped names are custom.
type Registry struct {
	mu      sync.RWMutex
	mapping map[string]types.EntityType
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{mapping: make(map[string]types.EntityType)}
}

// Register maps name to t. The last registration wins.
func (r *Registry) Register(name string, t types.EntityType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapping[name] = t
}

// RegisterAll applies every mapping in m.
func (r *Registry) RegisterAll(m map[string]types.EntityType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, t := range m {
		r.mapping[name] = t
	}
}

// Lookup returns the entity type for name, defaulting to custom.
func (r *Registry) Lookup(name string) types.EntityType {
	t, _ := r.Mapped(name)
	return t
}

// Mapped returns the entity type for name and whether it was registered.
func (r *Registry) Mapped(name string) (types.EntityType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.mapping[name]
	if !ok {
		return types.EntityTypeCustom, false
	}
	return t, true
}

// Entry is one name to type mapping.
type Entry struct {
	Name string           `json:"name"`
	Type types.EntityType `json:"type"`
}

// Entries returns every mapping sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.mapping))
	for name, t := range r.mapping {
		out = append(out, Entry{Name: name, Type: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of mappings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mapping)
}

// Clear removes every mapping.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapping = make(map[string]types.EntityType)
}

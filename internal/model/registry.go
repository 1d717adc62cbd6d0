// Package model holds model and component definitions and resolves their
// effective property sets through single-parent inheritance, merged with
// the property catalog.
package model

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/metakernel/internal/catalog"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Registry stores model and component definitions. It is safe for
// concurrent use; resolution reads a consistent view of the definitions.
type Registry struct {
	mu         sync.RWMutex
	catalog    *catalog.Catalog
	models     map[string]types.ModelDefinition
	components map[string]types.ComponentDefinition
	log        logrus.FieldLogger
}

// New creates a registry that resolves referenced properties against cat.
func New(cat *catalog.Catalog, log logrus.FieldLogger) *Registry {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Registry{
		catalog:    cat,
		models:     make(map[string]types.ModelDefinition),
		components: make(map[string]types.ComponentDefinition),
		log:        log,
	}
}

// Catalog returns the property catalog the registry resolves against.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// RegisterModel adds or replaces a model definition.
func (r *Registry) RegisterModel(def types.ModelDefinition) error {
	if strings.TrimSpace(def.ID) == "" {
		return fmt.Errorf("model: %w", types.ErrInvalidID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[def.ID]; ok {
		r.log.WithField("model", def.ID).Debug("replacing model definition")
	}
	r.models[def.ID] = def
	return nil
}

// RegisterComponent adds or replaces a component definition.
func (r *Registry) RegisterComponent(def types.ComponentDefinition) error {
	if strings.TrimSpace(def.ID) == "" {
		return fmt.Errorf("component: %w", types.ErrInvalidID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[def.ID]; ok {
		r.log.WithField("component", def.ID).Debug("replacing component definition")
	}
	r.components[def.ID] = def
	return nil
}

// Model returns the model registered under id.
func (r *Registry) Model(id string) (types.ModelDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	return m, ok
}

// Component returns the component registered under id.
func (r *Registry) Component(id string) (types.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[id]
	return c, ok
}

// IsAbstract reports whether id names an abstract model.
func (r *Registry) IsAbstract(id string) bool {
	m, ok := r.Model(id)
	return ok && m.Abstract
}

// Models returns every model sorted by ID.
func (r *Registry) Models() []types.ModelDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ModelDefinition, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Components returns every component sorted by ID.
func (r *Registry) Components() []types.ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ComponentDefinition, 0, len(r.components))
	for _, c := range r.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clear removes every model and component. The catalog is left alone.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = make(map[string]types.ModelDefinition)
	r.components = make(map[string]types.ComponentDefinition)
}

// lineage walks parent links from id to the root and returns the chain
// root first. A revisited ID fails with ErrInheritanceCycle.
func lineage[T any](id string, lookup func(string) (T, bool), parent func(T) string, notFound error) ([]T, error) {
	visited := make(map[string]bool)
	var chain []T
	for cur := id; cur != ""; {
		if visited[cur] {
			return nil, fmt.Errorf("%w: %s revisits %s", types.ErrInheritanceCycle, id, cur)
		}
		visited[cur] = true
		def, ok := lookup(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %s", notFound, cur)
		}
		chain = append(chain, def)
		cur = parent(def)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (r *Registry) modelLineage(id string) ([]types.ModelDefinition, error) {
	return lineage(id,
		func(k string) (types.ModelDefinition, bool) {
			m, ok := r.models[k]
			return m, ok
		},
		func(m types.ModelDefinition) string { return m.ExtendsModel },
		types.ErrModelNotFound)
}

func (r *Registry) componentLineage(id string) ([]types.ComponentDefinition, error) {
	return lineage(id,
		func(k string) (types.ComponentDefinition, bool) {
			c, ok := r.components[k]
			return c, ok
		},
		func(c types.ComponentDefinition) string { return c.ExtendsComponent },
		types.ErrComponentNotFound)
}

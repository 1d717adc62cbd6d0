package model

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// propertySet is an ordered set of definitions keyed by ID. Putting an
// existing ID replaces the definition but keeps its position.
type propertySet struct {
	ids  []string
	defs map[string]types.PropertyDefinition
}

func newPropertySet() *propertySet {
	return &propertySet{defs: make(map[string]types.PropertyDefinition)}
}

func (s *propertySet) put(def types.PropertyDefinition) {
	if _, ok := s.defs[def.ID]; !ok {
		s.ids = append(s.ids, def.ID)
	}
	s.defs[def.ID] = def
}

func (s *propertySet) list() []types.PropertyDefinition {
	out := make([]types.PropertyDefinition, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.defs[id]
	}
	return out
}

// ResolveEffectiveProperties returns the effective property set of a model:
// the ancestors' sets, root first, with each level's referenced components
// and then its referenced properties folded in. A referenced ID resolves to
// the level's own declaration when it has one and to the catalog
// otherwise; IDs found in neither are skipped. On collision the deeper
// level's definition replaces the inherited one in place.
func (r *Registry) ResolveEffectiveProperties(modelID string) ([]types.PropertyDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, err := r.modelLineage(modelID)
	if err != nil {
		return nil, err
	}

	set := newPropertySet()
	for _, level := range chain {
		for _, compID := range level.ReferencedComponents {
			if err := r.foldComponent(set, compID, map[string]bool{}); err != nil {
				if errors.Is(err, types.ErrComponentNotFound) {
					continue
				}
				return nil, fmt.Errorf("model %s: %w", level.ID, err)
			}
		}
		r.foldReferences(set, level.ReferencedProperties, level.LocalProperty)
	}
	return set.list(), nil
}

// ResolveComponentProperties returns the effective property set of a
// component, including its ancestors and sub-components.
func (r *Registry) ResolveComponentProperties(componentID string) ([]types.PropertyDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := newPropertySet()
	if err := r.foldComponent(set, componentID, map[string]bool{}); err != nil {
		return nil, err
	}
	return set.list(), nil
}

// foldComponent merges a component's effective set into set. active holds
// the components currently being resolved, so a sub-component that leads
// back to one of them is reported as a cycle.
func (r *Registry) foldComponent(set *propertySet, id string, active map[string]bool) error {
	chain, err := r.componentLineage(id)
	if err != nil {
		return err
	}
	for _, level := range chain {
		if active[level.ID] {
			return fmt.Errorf("%w: component %s", types.ErrInheritanceCycle, level.ID)
		}
	}
	for _, level := range chain {
		active[level.ID] = true
	}
	defer func() {
		for _, level := range chain {
			delete(active, level.ID)
		}
	}()

	for _, level := range chain {
		for _, sub := range level.SubComponents {
			err := r.foldComponent(set, sub, active)
			if err != nil && !errors.Is(err, types.ErrComponentNotFound) {
				return err
			}
		}
		r.foldReferences(set, level.ReferencedProperties, level.LocalProperty)
	}
	return nil
}

func (r *Registry) foldReferences(set *propertySet, ids []string, local func(string) (types.PropertyDefinition, bool)) {
	for _, id := range ids {
		if def, ok := local(id); ok {
			set.put(def)
			continue
		}
		if r.catalog == nil {
			continue
		}
		if def, ok := r.catalog.Get(id); ok {
			set.put(def)
		}
	}
}

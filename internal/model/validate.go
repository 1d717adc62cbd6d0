package model

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// ValidateModel checks that a model, its ancestors and the components they
// reference are well formed: every parent exists, the chain has no cycle,
// and every referenced property is declared locally or registered in the
// catalog.
func (r *Registry) ValidateModel(modelID string) types.Validation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, err := r.modelLineage(modelID)
	if err != nil {
		return invalid(err)
	}
	for _, level := range chain {
		if err := r.missingReferences("model", level.ID, level.ReferencedProperties, level.LocalProperty); err != nil {
			return invalid(err)
		}
		for _, compID := range level.ReferencedComponents {
			if v := r.validateComponent(compID, map[string]bool{}); !v.Valid {
				return invalid(fmt.Errorf("model %s: %w", level.ID, v.Err))
			}
		}
	}
	return types.Validation{Valid: true}
}

// ValidateComponent applies the model checks to a component and its
// sub-components.
func (r *Registry) ValidateComponent(componentID string) types.Validation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.validateComponent(componentID, map[string]bool{})
}

func (r *Registry) validateComponent(id string, active map[string]bool) types.Validation {
	chain, err := r.componentLineage(id)
	if err != nil {
		return invalid(err)
	}
	for _, level := range chain {
		if active[level.ID] {
			return invalid(fmt.Errorf("%w: component %s", types.ErrInheritanceCycle, level.ID))
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
		if err := r.missingReferences("component", level.ID, level.ReferencedProperties, level.LocalProperty); err != nil {
			return invalid(err)
		}
		for _, sub := range level.SubComponents {
			if v := r.validateComponent(sub, active); !v.Valid {
				return v
			}
		}
	}
	return types.Validation{Valid: true}
}

func (r *Registry) missingReferences(kind, id string, refs []string, local func(string) (types.PropertyDefinition, bool)) error {
	var external []string
	for _, ref := range refs {
		if _, ok := local(ref); !ok {
			external = append(external, ref)
		}
	}
	if len(external) == 0 {
		return nil
	}
	var missing []string
	if r.catalog == nil {
		missing = external
	} else {
		missing = r.catalog.ValidateReferences(external)
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s %s references %s", types.ErrPropertyNotFound, kind, id, strings.Join(missing, ", "))
}

func invalid(err error) types.Validation {
	return types.Validation{Message: err.Error(), Err: err}
}

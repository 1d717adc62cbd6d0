package strategy

import (
	"sort"
	"sync"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Names of the kernel's own definition entities. They are system entities
// with fixed shapes.
const (
	EntityProperties = "properties"
	EntityModels     = "models"
	EntityComponents = "components"
)

// SystemShapes holds the fixed, compiled shapes of system entities.
type SystemShapes struct {
	mu     sync.RWMutex
	shapes map[string][]types.PropertyDefinition
}

// NewSystemShapes returns a table seeded with the definition entities.
func NewSystemShapes() *SystemShapes {
	s := &SystemShapes{shapes: make(map[string][]types.PropertyDefinition)}
	s.shapes[EntityProperties] = propertyFields()
	s.shapes[EntityModels] = modelFields()
	s.shapes[EntityComponents] = componentFields()
	return s
}

// Register adds or replaces the fixed shape of a system entity.
func (s *SystemShapes) Register(entity string, fields []types.PropertyDefinition) {
	fs := make([]types.PropertyDefinition, len(fields))
	copy(fs, fields)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shapes[entity] = fs
}

// Get returns the fields of a system entity.
func (s *SystemShapes) Get(entity string) ([]types.PropertyDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs, ok := s.shapes[entity]
	if !ok {
		return nil, false
	}
	out := make([]types.PropertyDefinition, len(fs))
	copy(out, fs)
	return out, true
}

// Names returns the system entity names sorted.
func (s *SystemShapes) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.shapes))
	for name := range s.shapes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func field(id string, dt types.DataType, nullable bool) types.PropertyDefinition {
	return types.PropertyDefinition{ID: id, Name: id, DataType: dt, Nullable: nullable}
}

func key(id string) types.PropertyDefinition {
	return types.PropertyDefinition{ID: id, Name: id, DataType: types.DataTypeString, PrimaryKey: true, Indexed: true}
}

func propertyFields() []types.PropertyDefinition {
	return []types.PropertyDefinition{
		key("id"),
		field("name", types.DataTypeString, false),
		field("data_type", types.DataTypeString, false),
		field("scope", types.DataTypeString, true),
		field("description", types.DataTypeText, true),
		field("length", types.DataTypeInteger, true),
		field("nullable", types.DataTypeBoolean, true),
		field("primary_key", types.DataTypeBoolean, true),
		field("indexed", types.DataTypeBoolean, true),
	}
}

func modelFields() []types.PropertyDefinition {
	return []types.PropertyDefinition{
		key("id"),
		field("extends_model", types.DataTypeString, true),
		field("abstract", types.DataTypeBoolean, true),
		field("description", types.DataTypeText, true),
		field("properties", types.DataTypeJSON, true),
		field("components", types.DataTypeJSON, true),
		field("referenced_properties", types.DataTypeJSON, true),
		field("referenced_components", types.DataTypeJSON, true),
	}
}

func componentFields() []types.PropertyDefinition {
	return []types.PropertyDefinition{
		key("id"),
		field("extends_component", types.DataTypeString, true),
		field("description", types.DataTypeText, true),
		field("properties", types.DataTypeJSON, true),
		field("sub_components", types.DataTypeJSON, true),
		field("referenced_properties", types.DataTypeJSON, true),
	}
}

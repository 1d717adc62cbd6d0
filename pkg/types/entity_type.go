package types

import "fmt"

// EntityType classifies an entity and selects its execution path.
type EntityType int

// Entity types. The set is closed; every dispatch point switches over all
// three values.
const (
	EntityTypeCustom EntityType = iota
	EntityTypeSystem
	EntityTypeMeta
)

// EntityTypes lists every entity type.
var EntityTypes = []EntityType{EntityTypeCustom, EntityTypeSystem, EntityTypeMeta}

// Key returns the stable key of the entity type.
func (t EntityType) Key() string {
	switch t {
	case EntityTypeCustom:
		return "custom"
	case EntityTypeSystem:
		return "system"
	case EntityTypeMeta:
		return "meta"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Description returns a human-readable description of the entity type.
func (t EntityType) Description() string {
	switch t {
	case EntityTypeCustom:
		return "Custom entity; payload keys are accepted as-is"
	case EntityTypeSystem:
		return "System entity with a fixed, compiled shape"
	case EntityTypeMeta:
		return "Metadata-defined entity resolved from the model registry"
	default:
		return "Unknown entity type"
	}
}

// String implements fmt.Stringer.
func (t EntityType) String() string { return t.Key() }

// ParseEntityType maps a key back to its entity type.
func ParseEntityType(key string) (EntityType, error) {
	for _, t := range EntityTypes {
		if t.Key() == key {
			return t, nil
		}
	}
	return EntityTypeCustom, fmt.Errorf("%w: %q", ErrInvalidEntityType, key)
}

// MarshalText encodes the entity type as its key.
func (t EntityType) MarshalText() ([]byte, error) {
	return []byte(t.Key()), nil
}

// UnmarshalText decodes an entity type key.
func (t *EntityType) UnmarshalText(text []byte) error {
	parsed, err := ParseEntityType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

package types

import "errors"

// Definition errors.
var (
	ErrInvalidDataType   = errors.New("invalid data type")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrModelNotFound     = errors.New("model not found")
	ErrComponentNotFound = errors.New("component not found")
	ErrInheritanceCycle  = errors.New("inheritance cycle detected")
	ErrAbstractModel     = errors.New("model is abstract")
	ErrInvalidID         = errors.New("invalid definition ID")
)

// Command and pipeline errors.
var (
	ErrContextRequired    = errors.New("command context is required")
	ErrEntityNameRequired = errors.New("entity name is required")
	ErrUnsupportedCommand = errors.New("unsupported command type")
	ErrStrategyNotBound   = errors.New("no strategy bound for command type")
	ErrMalformedHandler   = errors.New("malformed handler registration")
	ErrShapeNotFound      = errors.New("entity shape not found")
	ErrUnknownField       = errors.New("unknown field")
	ErrFieldRequired      = errors.New("field is required")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrPayloadRequired    = errors.New("payload is required")
	ErrUnknownContextKind = errors.New("unknown context kind")
)

// Store errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrNotFound        = errors.New("record not found")
)

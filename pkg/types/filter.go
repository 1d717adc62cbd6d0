package types

import "fmt"

// Operator is a filter comparison operator.
type Operator string

// Filter operators.
const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
	OpExists   Operator = "exists"
)

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpContains, OpExists:
		return true
	default:
		return false
	}
}

// Condition is one field predicate of a filter.
type Condition struct {
	Field string   `json:"field" yaml:"field"`
	Op    Operator `json:"op" yaml:"op"`
	Value any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// Filter selects the records a query, update or delete applies to. All
// conditions must hold. The zero value is the empty filter, which matches
// every record; a Filter is a value and is never nil.
type Filter struct {
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// EmptyFilter returns the explicit empty filter.
func EmptyFilter() Filter {
	return Filter{}
}

// Eq returns a filter with a single equality condition.
func Eq(field string, value any) Filter {
	return Filter{}.Where(field, OpEq, value)
}

// Where returns a copy of f with an extra condition.
func (f Filter) Where(field string, op Operator, value any) Filter {
	conds := make([]Condition, len(f.Conditions), len(f.Conditions)+1)
	copy(conds, f.Conditions)
	return Filter{Conditions: append(conds, Condition{Field: field, Op: op, Value: value})}
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.Conditions) == 0
}

// Fields returns the distinct condition fields in order.
func (f Filter) Fields() []string {
	seen := make(map[string]bool, len(f.Conditions))
	var out []string
	for _, c := range f.Conditions {
		if !seen[c.Field] {
			seen[c.Field] = true
			out = append(out, c.Field)
		}
	}
	return out
}

// Validate checks that every condition names a field and a known operator.
func (f Filter) Validate() error {
	for i, c := range f.Conditions {
		if c.Field == "" {
			return fmt.Errorf("%w: condition %d has no field", ErrInvalidFilter, i)
		}
		if !c.Op.Valid() {
			return fmt.Errorf("%w: condition %d has operator %q", ErrInvalidFilter, i, c.Op)
		}
	}
	return nil
}

// RecordIDField is the reserved filter field that matches the stored
// record identifier rather than a payload field.
const RecordIDField = "_id"

// ByRecordID returns a filter matching a single record.
func ByRecordID(id string) Filter {
	return Eq(RecordIDField, id)
}

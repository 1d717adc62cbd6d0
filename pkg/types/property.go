package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DataType is the value type of a property.
type DataType string

// Property data types. The set is closed.
const (
	DataTypeString   DataType = "string"
	DataTypeInteger  DataType = "integer"
	DataTypeLong     DataType = "long"
	DataTypeDouble   DataType = "double"
	DataTypeBoolean  DataType = "boolean"
	DataTypeDate     DataType = "date"
	DataTypeDateTime DataType = "datetime"
	DataTypeText     DataType = "text"
	DataTypeJSON     DataType = "json"
	DataTypeDecimal  DataType = "decimal"
)

// DataTypes lists every data type in declaration order.
var DataTypes = []DataType{
	DataTypeString,
	DataTypeInteger,
	DataTypeLong,
	DataTypeDouble,
	DataTypeBoolean,
	DataTypeDate,
	DataTypeDateTime,
	DataTypeText,
	DataTypeJSON,
	DataTypeDecimal,
}

// Date layouts accepted for date and datetime values.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// Valid reports whether d is one of the declared data types.
func (d DataType) Valid() bool {
	for _, dt := range DataTypes {
		if d == dt {
			return true
		}
	}
	return false
}

// ParseDataType parses a data type name case-insensitively, so "String" and
// "DATETIME" are accepted.
func ParseDataType(s string) (DataType, error) {
	dt := DataType(strings.ToLower(strings.TrimSpace(s)))
	if !dt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDataType, s)
	}
	return dt, nil
}

// UnmarshalText parses data type names leniently for JSON and YAML decoding.
func (d *DataType) UnmarshalText(text []byte) error {
	dt, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*d = dt
	return nil
}

// PropertyDefinition describes a named, typed property. Definitions are
// immutable once registered; registering the same ID again replaces the
// earlier definition.
type PropertyDefinition struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	DataType    DataType `json:"data_type" yaml:"data_type"`
	Scope       string   `json:"scope,omitempty" yaml:"scope,omitempty"` // Empty means universal.
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`

	// Structural hints for schema derivation. The kernel only reads Nullable.
	Length     int  `json:"length,omitempty" yaml:"length,omitempty"`
	Nullable   bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	PrimaryKey bool `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Indexed    bool `json:"indexed,omitempty" yaml:"indexed,omitempty"`
}

// Universal reports whether the property has no scope.
func (p PropertyDefinition) Universal() bool {
	return p.Scope == ""
}

// Conform checks v against the property's data type and returns the
// normalised value. Nil is accepted only for nullable properties.
func (p PropertyDefinition) Conform(v any) (any, error) {
	if v == nil {
		if p.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrFieldRequired, p.ID)
	}
	out, err := ConformValue(p.DataType, v)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", p.ID, err)
	}
	return out, nil
}

// DefaultValue returns the type-based default value for a data type:
// "" for string and text, int64(0) for integer and long, float64(0) for
// double, "0" for decimal, false for boolean, and nil for date, datetime
// and json. Returns ErrInvalidDataType for an unknown type.
func DefaultValue(dt DataType) (any, error) {
	switch dt {
	case DataTypeString, DataTypeText:
		return "", nil
	case DataTypeInteger, DataTypeLong:
		return int64(0), nil
	case DataTypeDouble:
		return float64(0), nil
	case DataTypeDecimal:
		return "0", nil
	case DataTypeBoolean:
		return false, nil
	case DataTypeDate, DataTypeDateTime, DataTypeJSON:
		return nil, nil
	default:
		return nil, ErrInvalidDataType
	}
}

// ConformValue checks a non-nil value against dt and normalises it:
// integral types become int64, double becomes float64, decimal becomes its
// canonical string form, and dates become formatted strings.
func ConformValue(dt DataType, v any) (any, error) {
	switch dt {
	case DataTypeString, DataTypeText:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(dt, v)
		}
		return s, nil
	case DataTypeInteger:
		n, ok := toInt64(v)
		if !ok || n < math.MinInt32 || n > math.MaxInt32 {
			return nil, mismatch(dt, v)
		}
		return n, nil
	case DataTypeLong:
		n, ok := toInt64(v)
		if !ok {
			return nil, mismatch(dt, v)
		}
		return n, nil
	case DataTypeDouble:
		f, ok := toFloat64(v)
		if !ok {
			return nil, mismatch(dt, v)
		}
		return f, nil
	case DataTypeDecimal:
		d, ok := toDecimal(v)
		if !ok {
			return nil, mismatch(dt, v)
		}
		return d.String(), nil
	case DataTypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(dt, v)
		}
		return b, nil
	case DataTypeDate:
		return conformTime(dt, v, DateLayout)
	case DataTypeDateTime:
		return conformTime(dt, v, DateTimeLayout)
	case DataTypeJSON:
		return v, nil
	default:
		return nil, ErrInvalidDataType
	}
}

func mismatch(dt DataType, v any) error {
	return fmt.Errorf("%w: %T is not %s", ErrTypeMismatch, v, dt)
}

func conformTime(dt DataType, v any, layout string) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(layout), nil
	case string:
		parsed, err := time.Parse(layout, t)
		if err != nil {
			return nil, mismatch(dt, v)
		}
		return parsed.Format(layout), nil
	default:
		return nil, mismatch(dt, v)
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// toDecimal parses strings and JSON numbers exactly; only values that are
// already binary floats go through float conversion.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat32(n), true
	}
	if i, ok := toInt64(v); ok {
		return decimal.NewFromInt(i), true
	}
	return decimal.Decimal{}, false
}

package sqlite

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// matches reports whether a stored record satisfies every condition of
// filter. Fields are gjson paths into the record data, so dotted paths
// reach nested values; types.RecordIDField matches the record ID.
func matches(id string, data []byte, filter types.Filter) bool {
	for _, c := range filter.Conditions {
		var res gjson.Result
		if c.Field == types.RecordIDField {
			res = gjson.Result{Type: gjson.String, Str: id, Raw: strconv.Quote(id)}
		} else {
			res = gjson.GetBytes(data, c.Field)
		}
		if !evaluate(res, c) {
			return false
		}
	}
	return true
}

func evaluate(res gjson.Result, c types.Condition) bool {
	switch c.Op {
	case types.OpExists:
		want := true
		if b, ok := c.Value.(bool); ok {
			want = b
		}
		return res.Exists() == want
	case types.OpEq:
		return res.Exists() && equal(res, c.Value)
	case types.OpNeq:
		return !res.Exists() || !equal(res, c.Value)
	case types.OpGt, types.OpGte, types.OpLt, types.OpLte:
		if !res.Exists() {
			return false
		}
		cmp, ok := compare(res, c.Value)
		if !ok {
			return false
		}
		switch c.Op {
		case types.OpGt:
			return cmp > 0
		case types.OpGte:
			return cmp >= 0
		case types.OpLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case types.OpContains:
		if !res.Exists() {
			return false
		}
		if res.IsArray() {
			for _, el := range res.Array() {
				if equal(el, c.Value) {
					return true
				}
			}
			return false
		}
		return strings.Contains(res.String(), fmt.Sprint(c.Value))
	default:
		return false
	}
}

func equal(res gjson.Result, v any) bool {
	if v == nil {
		return res.Type == gjson.Null
	}
	if f, ok := number(v); ok {
		return res.Type == gjson.Number && res.Float() == f
	}
	switch x := v.(type) {
	case bool:
		return (res.Type == gjson.True || res.Type == gjson.False) && res.Bool() == x
	case string:
		return res.Type == gjson.String && res.Str == x
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return gjson.ParseBytes(raw).Raw == res.Raw
}

// compare orders a stored value against v: numerically when both are
// numbers, lexically when both are strings.
func compare(res gjson.Result, v any) (int, bool) {
	if f, ok := number(v); ok {
		if res.Type != gjson.Number {
			return 0, false
		}
		switch a := res.Float(); {
		case a < f:
			return -1, true
		case a > f:
			return 1, true
		default:
			return 0, true
		}
	}
	s, ok := v.(string)
	if !ok || res.Type != gjson.String {
		return 0, false
	}
	return strings.Compare(res.Str, s), true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

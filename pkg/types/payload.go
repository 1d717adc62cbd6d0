package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Payload is an insertion-ordered key/value map carrying command data and
// stored records. The zero value is empty and ready to use.
type Payload struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewPayload builds a payload from alternating key/value pairs.
// It panics if kv has odd length or a key is not a string.
func NewPayload(kv ...any) *Payload {
	if len(kv)%2 != 0 {
		panic("types.NewPayload: odd number of arguments")
	}
	p := &Payload{}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("types.NewPayload: key %v is not a string", kv[i]))
		}
		p.Set(key, kv[i+1])
	}
	return p
}

// PayloadFromMap builds a payload from m with keys in the given order.
// Keys of m missing from order are appended in sorted order.
func PayloadFromMap(m map[string]any, order ...string) *Payload {
	p := &Payload{}
	for _, k := range order {
		if v, ok := m[k]; ok {
			p.Set(k, v)
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !p.Has(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		p.Set(k, m[k])
	}
	return p
}

// Set stores value under key. A new key goes to the end; an existing key
// keeps its position.
func (p *Payload) Set(key string, value any) {
	if p.m == nil {
		p.m = orderedmap.New[string, any]()
	}
	p.m.Set(key, value)
}

// Get returns the value stored under key.
func (p *Payload) Get(key string) (any, bool) {
	if p == nil || p.m == nil {
		return nil, false
	}
	return p.m.Get(key)
}

// Has reports whether key is present.
func (p *Payload) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Delete removes key. Missing keys are ignored.
func (p *Payload) Delete(key string) {
	if p == nil || p.m == nil {
		return
	}
	p.m.Delete(key)
}

// Keys returns the keys in insertion order.
func (p *Payload) Keys() []string {
	if p.Len() == 0 {
		return nil
	}
	out := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Len returns the number of entries. A nil payload has length 0.
func (p *Payload) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Range calls fn for each entry in order until fn returns false.
func (p *Payload) Range(fn func(key string, value any) bool) {
	if p.Len() == 0 {
		return
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Map returns an unordered copy of the entries.
func (p *Payload) Map() map[string]any {
	out := make(map[string]any, p.Len())
	p.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}

// Clone returns a shallow copy.
func (p *Payload) Clone() *Payload {
	if p == nil {
		return nil
	}
	out := &Payload{}
	p.Range(func(k string, v any) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// MarshalJSON encodes the payload as a JSON object in key order.
func (p *Payload) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	if p.m == nil {
		return []byte("{}"), nil
	}
	return p.m.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, preserving top-level key order.
// Numbers decode as json.Number so integral values survive the round trip.
func (p *Payload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("payload must be a JSON object")
	}
	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(trimmed); err != nil {
		return err
	}

	out := Payload{m: orderedmap.New[string, any]()}
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		dec := json.NewDecoder(bytes.NewReader(pair.Value))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding %s: %w", pair.Key, err)
		}
		out.m.Set(pair.Key, value)
	}
	*p = out
	return nil
}

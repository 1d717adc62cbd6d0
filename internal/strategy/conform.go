package strategy

import (
	"fmt"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// conformPayload checks data against a strict shape and returns the
// normalised payload. Custom shapes return data untouched. On create every
// non-nullable field must be present; a missing primary key is taken from
// recordID when one was assigned.
func conformPayload(shape types.EntityShape, data *types.Payload, create bool, recordID string) (*types.Payload, error) {
	if !shape.Strict {
		return data, nil
	}
	out := &types.Payload{}
	var err error
	data.Range(func(k string, v any) bool {
		f, ok := shape.Field(k)
		if !ok {
			err = fmt.Errorf("%w: %s has no field %s", types.ErrUnknownField, shape.Entity, k)
			return false
		}
		var cv any
		if cv, err = f.Conform(v); err != nil {
			return false
		}
		out.Set(k, cv)
		return true
	})
	if err != nil {
		return nil, err
	}
	if !create {
		return out, nil
	}
	for _, f := range shape.Fields {
		if out.Has(f.ID) || f.Nullable {
			continue
		}
		if f.PrimaryKey && recordID != "" {
			out.Set(f.ID, recordID)
			continue
		}
		return nil, fmt.Errorf("%w: %s.%s", types.ErrFieldRequired, shape.Entity, f.ID)
	}
	return out, nil
}

// checkFilter validates filter operators and, for strict shapes, that every
// condition names a field of the shape.
func checkFilter(shape types.EntityShape, filter types.Filter) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	if !shape.Strict {
		return nil
	}
	for _, f := range filter.Fields() {
		if f == types.RecordIDField {
			continue
		}
		if _, ok := shape.Field(rootField(f)); !ok {
			return fmt.Errorf("%w: %s has no field %s", types.ErrUnknownField, shape.Entity, f)
		}
	}
	return nil
}

// recordIDFor returns the identifier a created record gets: the primary
// key value when the shape has one, otherwise the assigned record ID.
func recordIDFor(shape types.EntityShape, data *types.Payload, assigned string) string {
	for _, f := range shape.Fields {
		if !f.PrimaryKey {
			continue
		}
		if v, ok := data.Get(f.ID); ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return assigned
}

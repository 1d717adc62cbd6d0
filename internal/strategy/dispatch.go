// Package strategy holds the four command strategies and the entity type
// dispatch they share: each execution resolves its entity type once and
// takes the meta, system or custom path to the entity's shape.
package strategy

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/metakernel/internal/entitytype"
	"github.com/mesh-intelligence/metakernel/internal/model"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Dispatcher resolves entity shapes and owns the store the strategies
// write to.
type Dispatcher struct {
	EntityTypes *entitytype.Registry
	Models      *model.Registry
	System      *SystemShapes
	Store       types.Store
}

// shapeResolver is one execution path.
type shapeResolver interface {
	resolve(cc *types.CommandContext) (types.EntityShape, error)
}

// Dispatch looks up the entity type of cc once, records it together with
// the resolved shape on cc, and returns the shape.
func (d *Dispatcher) Dispatch(cc *types.CommandContext) (types.EntityShape, error) {
	et := types.EntityTypeCustom
	if d.EntityTypes != nil {
		et = d.EntityTypes.Lookup(cc.EntityName)
	}
	cc.Set(types.AttrEntityType, et)

	var r shapeResolver
	switch et {
	case types.EntityTypeMeta:
		r = metaResolver{models: d.Models}
	case types.EntityTypeSystem:
		r = systemResolver{shapes: d.System}
	case types.EntityTypeCustom:
		r = customResolver{}
	default:
		return types.EntityShape{}, fmt.Errorf("%w: %d", types.ErrInvalidEntityType, int(et))
	}

	shape, err := r.resolve(cc)
	if err != nil {
		return types.EntityShape{}, err
	}
	shape.Entity = cc.EntityName
	shape.Type = et
	cc.Set(types.AttrShape, shape)
	return shape, nil
}

// metaResolver resolves the shape from the model named after the entity.
type metaResolver struct {
	models *model.Registry
}

func (r metaResolver) resolve(cc *types.CommandContext) (types.EntityShape, error) {
	if r.models == nil {
		return types.EntityShape{}, fmt.Errorf("%w: %s", types.ErrModelNotFound, cc.EntityName)
	}
	m, ok := r.models.Model(cc.EntityName)
	if !ok {
		return types.EntityShape{}, fmt.Errorf("%w: %s", types.ErrModelNotFound, cc.EntityName)
	}
	if m.Abstract {
		return types.EntityShape{}, fmt.Errorf("%w: %s", types.ErrAbstractModel, m.ID)
	}
	fields, err := r.models.ResolveEffectiveProperties(m.ID)
	if err != nil {
		return types.EntityShape{}, err
	}
	return types.EntityShape{Fields: fields, Strict: true}, nil
}

// systemResolver uses a fixed, compiled shape.
type systemResolver struct {
	shapes *SystemShapes
}

func (r systemResolver) resolve(cc *types.CommandContext) (types.EntityShape, error) {
	if r.shapes == nil {
		return types.EntityShape{}, fmt.Errorf("%w: %s", types.ErrShapeNotFound, cc.EntityName)
	}
	fields, ok := r.shapes.Get(cc.EntityName)
	if !ok {
		return types.EntityShape{}, fmt.Errorf("%w: %s", types.ErrShapeNotFound, cc.EntityName)
	}
	return types.EntityShape{Fields: fields, Strict: true}, nil
}

// customResolver takes the payload keys and filter fields as they are.
type customResolver struct{}

func (customResolver) resolve(cc *types.CommandContext) (types.EntityShape, error) {
	var fields []types.PropertyDefinition
	seen := make(map[string]bool)
	add := func(id string) {
		if id == types.RecordIDField || seen[id] {
			return
		}
		seen[id] = true
		fields = append(fields, types.PropertyDefinition{ID: id, Name: id, DataType: types.DataTypeJSON, Nullable: true})
	}
	for _, k := range cc.Data.Keys() {
		add(k)
	}
	for _, f := range cc.Filter.Fields() {
		add(rootField(f))
	}
	return types.EntityShape{Fields: fields}, nil
}

func rootField(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

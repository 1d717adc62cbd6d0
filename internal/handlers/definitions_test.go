package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/metakernel/internal/catalog"
	"github.com/mesh-intelligence/metakernel/internal/model"
	"github.com/mesh-intelligence/metakernel/internal/strategy"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// queryStore answers record-ID lookups from recs and remembers the filters
// it was asked for.
type queryStore struct {
	types.Store
	recs    []types.Record
	filters *[]types.Filter
}

func (s queryStore) Query(_ context.Context, _ types.EntityShape, f types.Filter) ([]types.Record, error) {
	if s.filters != nil {
		*s.filters = append(*s.filters, f)
	}
	var out []types.Record
	for _, r := range s.recs {
		if len(f.Conditions) == 1 && f.Conditions[0].Field == types.RecordIDField && f.Conditions[0].Value == r.ID {
			out = append(out, r)
		}
	}
	return out, nil
}

func systemCommand(cmd types.CommandType, entity string) *types.CommandContext {
	cc := command(cmd, entity, types.NewPayload("id", "x"), types.Eq("id", "x"))
	cc.Set(types.AttrEntityType, types.EntityTypeSystem)
	return cc
}

func TestApplyDefinition(t *testing.T) {
	cat := catalog.New()
	models := model.New(cat, nil)

	prop := types.Record{ID: "price", Data: types.NewPayload("id", "price", "name", "Price", "data_type", "decimal", "length", int64(12))}
	require.NoError(t, ApplyDefinition(strategy.EntityProperties, prop, cat, models))
	got, ok := cat.Get("price")
	require.True(t, ok)
	assert.Equal(t, types.DataTypeDecimal, got.DataType)
	assert.Equal(t, 12, got.Length)

	mdl := types.Record{ID: "orders", Data: types.NewPayload("id", "orders", "referenced_properties", []any{"price"})}
	require.NoError(t, ApplyDefinition(strategy.EntityModels, mdl, cat, models))
	fields, err := models.ResolveEffectiveProperties("orders")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "price", fields[0].ID)

	comp := types.Record{ID: "audit", Data: types.NewPayload("id", "audit", "sub_components", []any{})}
	require.NoError(t, ApplyDefinition(strategy.EntityComponents, comp, cat, models))
	_, ok = models.Component("audit")
	assert.True(t, ok)

	bad := types.Record{ID: "b", Data: types.NewPayload("id", "b", "data_type", "blob")}
	assert.ErrorIs(t, ApplyDefinition(strategy.EntityProperties, bad, cat, models), types.ErrInvalidDataType)

	assert.NoError(t, ApplyDefinition("orders", prop, cat, models), "other entities are ignored")
}

func TestDefinitionSyncSupports(t *testing.T) {
	s := DefinitionSync{}
	assert.True(t, s.Supports(systemCommand(types.CommandCreate, strategy.EntityProperties)))
	assert.True(t, s.Supports(systemCommand(types.CommandUpdate, strategy.EntityModels)))
	assert.False(t, s.Supports(systemCommand(types.CommandQuery, strategy.EntityModels)))
	assert.False(t, s.Supports(systemCommand(types.CommandCreate, "audit_log")))

	custom := command(types.CommandCreate, strategy.EntityProperties, nil, types.Filter{})
	custom.Set(types.AttrEntityType, types.EntityTypeCustom)
	assert.False(t, s.Supports(custom))
}

func TestDefinitionSyncRegistersCreatedAndUpdated(t *testing.T) {
	cat := catalog.New()
	models := model.New(cat, nil)
	updated := types.Record{ID: "qty", Data: types.NewPayload("id", "qty", "name", "Qty", "data_type", "long")}
	var filters []types.Filter
	s := DefinitionSync{Catalog: cat, Models: models, Store: queryStore{recs: []types.Record{updated}, filters: &filters}}

	cc := systemCommand(types.CommandCreate, strategy.EntityProperties)
	cc.Set(types.AttrResult, types.Record{ID: "qty", Data: types.NewPayload("id", "qty", "name", "Qty", "data_type", "integer")})
	ok, err := s.Handle(context.Background(), cc, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ := cat.Get("qty")
	assert.Equal(t, types.DataTypeInteger, got.DataType)

	cc = systemCommand(types.CommandUpdate, strategy.EntityProperties)
	cc.Filter = types.Eq("data_type", "integer")
	cc.Set(types.AttrResult, types.NewWriteResult(strategy.EntityProperties, []string{"qty"}))
	ok, err = s.Handle(context.Background(), cc, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = cat.Get("qty")
	assert.Equal(t, types.DataTypeLong, got.DataType)
	assert.Equal(t, []types.Filter{types.ByRecordID("qty")}, filters, "updated records are re-read by ID, not by the update filter")
}

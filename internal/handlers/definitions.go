package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/metakernel/internal/catalog"
	"github.com/mesh-intelligence/metakernel/internal/model"
	"github.com/mesh-intelligence/metakernel/internal/strategy"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// ApplyDefinition decodes a stored definition record of a definition
// entity and registers it. Records of other entities are ignored.
func ApplyDefinition(entity string, rec types.Record, cat *catalog.Catalog, models *model.Registry) error {
	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encoding %s record %s: %w", entity, rec.ID, err)
	}
	switch entity {
	case strategy.EntityProperties:
		var def types.PropertyDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return fmt.Errorf("decoding property %s: %w", rec.ID, err)
		}
		if !cat.Register(&def) {
			return fmt.Errorf("property record %s: %w", rec.ID, types.ErrInvalidID)
		}
	case strategy.EntityModels:
		var def types.ModelDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return fmt.Errorf("decoding model %s: %w", rec.ID, err)
		}
		return models.RegisterModel(def)
	case strategy.EntityComponents:
		var def types.ComponentDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return fmt.Errorf("decoding component %s: %w", rec.ID, err)
		}
		return models.RegisterComponent(def)
	}
	return nil
}

// DefinitionSync registers definitions written through the definition
// entities, so a created property is usable by the next command. Deleted
// definitions stay registered until the registries are reloaded.
type DefinitionSync struct {
	Catalog *catalog.Catalog
	Models  *model.Registry
	Store   types.Store
	Logger  logrus.FieldLogger
}

func (DefinitionSync) Name() string { return NameDefinitionSync }
func (DefinitionSync) Order() int   { return 200 }

func (DefinitionSync) Supports(cc *types.CommandContext) bool {
	if et, ok := cc.EntityType(); !ok || et != types.EntityTypeSystem {
		return false
	}
	switch cc.EntityName {
	case strategy.EntityProperties, strategy.EntityModels, strategy.EntityComponents:
	default:
		return false
	}
	cmd := cc.CommandType()
	return cmd == types.CommandCreate || cmd == types.CommandUpdate
}

func (s DefinitionSync) Handle(ctx context.Context, cc *types.CommandContext, _ types.Chain) (bool, error) {
	var recs []types.Record
	result, _ := cc.Result()
	switch v := result.(type) {
	case types.Record:
		recs = []types.Record{v}
	case types.WriteResult:
		if s.Store == nil {
			return true, nil
		}
		// The update may have rewritten the fields its filter matched on.
		shape, _ := cc.Shape()
		for _, id := range v.IDs {
			found, err := s.Store.Query(ctx, shape, types.ByRecordID(id))
			if err != nil {
				return false, fmt.Errorf("reloading %s/%s: %w", cc.EntityName, id, err)
			}
			recs = append(recs, found...)
		}
	}
	for _, rec := range recs {
		if err := ApplyDefinition(cc.EntityName, rec, s.Catalog, s.Models); err != nil {
			return false, err
		}
	}
	orDiscard(s.Logger).WithFields(logrus.Fields{
		"entity":  cc.EntityName,
		"records": len(recs),
	}).Debug("synced definitions")
	return true, nil
}

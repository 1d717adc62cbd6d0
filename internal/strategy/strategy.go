package strategy

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/metakernel/internal/engine"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Create inserts one record and returns it.
type Create struct{ D *Dispatcher }

// Update merges the payload into matching records and returns a
// types.WriteResult.
type Update struct{ D *Dispatcher }

// Delete removes matching records and returns a types.WriteResult.
type Delete struct{ D *Dispatcher }

// Query returns the matching records.
type Query struct{ D *Dispatcher }

// Register binds the four strategies over d to e.
func Register(e *engine.Engine, d *Dispatcher) error {
	bindings := map[types.CommandType]types.Strategy{
		types.CommandCreate: Create{D: d},
		types.CommandUpdate: Update{D: d},
		types.CommandDelete: Delete{D: d},
		types.CommandQuery:  Query{D: d},
	}
	for _, cmd := range types.CommandTypes {
		if err := e.RegisterStrategy(cmd, bindings[cmd]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) store() (types.Store, error) {
	if d.Store == nil {
		return nil, types.ErrStoreDetached
	}
	return d.Store, nil
}

// Execute implements types.Strategy.
func (s Create) Execute(ctx context.Context, cc *types.CommandContext) (any, error) {
	if cc.Data.Len() == 0 {
		return nil, fmt.Errorf("create %s: %w", cc.EntityName, types.ErrPayloadRequired)
	}
	shape, err := s.D.Dispatch(cc)
	if err != nil {
		return nil, err
	}
	data, err := conformPayload(shape, cc.Data, true, cc.RecordID())
	if err != nil {
		return nil, err
	}
	st, err := s.D.store()
	if err != nil {
		return nil, err
	}
	rec, err := st.Create(ctx, shape, recordIDFor(shape, data, cc.RecordID()), data)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", cc.EntityName, err)
	}
	return rec, nil
}

// Execute implements types.Strategy.
func (s Update) Execute(ctx context.Context, cc *types.CommandContext) (any, error) {
	if cc.Data.Len() == 0 {
		return nil, fmt.Errorf("update %s: %w", cc.EntityName, types.ErrPayloadRequired)
	}
	shape, err := s.D.Dispatch(cc)
	if err != nil {
		return nil, err
	}
	data, err := conformPayload(shape, cc.Data, false, "")
	if err != nil {
		return nil, err
	}
	if err := checkFilter(shape, cc.Filter); err != nil {
		return nil, err
	}
	st, err := s.D.store()
	if err != nil {
		return nil, err
	}
	ids, err := st.Update(ctx, shape, data, cc.Filter)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", cc.EntityName, err)
	}
	return types.NewWriteResult(cc.EntityName, ids), nil
}

// Execute implements types.Strategy.
func (s Delete) Execute(ctx context.Context, cc *types.CommandContext) (any, error) {
	shape, err := s.D.Dispatch(cc)
	if err != nil {
		return nil, err
	}
	if err := checkFilter(shape, cc.Filter); err != nil {
		return nil, err
	}
	st, err := s.D.store()
	if err != nil {
		return nil, err
	}
	ids, err := st.Delete(ctx, shape, cc.Filter)
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", cc.EntityName, err)
	}
	return types.NewWriteResult(cc.EntityName, ids), nil
}

// Execute implements types.Strategy.
func (s Query) Execute(ctx context.Context, cc *types.CommandContext) (any, error) {
	shape, err := s.D.Dispatch(cc)
	if err != nil {
		return nil, err
	}
	if err := checkFilter(shape, cc.Filter); err != nil {
		return nil, err
	}
	st, err := s.D.store()
	if err != nil {
		return nil, err
	}
	recs, err := st.Query(ctx, shape, cc.Filter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", cc.EntityName, err)
	}
	return recs, nil
}

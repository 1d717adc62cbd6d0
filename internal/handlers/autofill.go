package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Autofill assigns a UUID v7 record ID to creates that have none.
type Autofill struct{}

func (Autofill) Name() string { return NameAutofill }
func (Autofill) Order() int   { return 300 }

func (Autofill) Supports(cc *types.CommandContext) bool {
	return cc.CommandType() == types.CommandCreate && cc.RecordID() == ""
}

func (Autofill) Handle(_ context.Context, cc *types.CommandContext, _ types.Chain) (bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generating record id: %w", err)
	}
	cc.SetRecordID(id.String())
	return true, nil
}

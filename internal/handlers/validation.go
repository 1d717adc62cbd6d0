package handlers

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Validation rejects structurally incomplete commands before they reach a
// strategy: writes without a payload, filters with bad conditions, and
// unfiltered updates or deletes unless AllowUnfiltered is set.
type Validation struct{}

func (Validation) Name() string { return NameValidation }
func (Validation) Order() int   { return 100 }

func (Validation) Supports(*types.CommandContext) bool { return true }

func (Validation) Handle(_ context.Context, cc *types.CommandContext, _ types.Chain) (bool, error) {
	cmd := cc.CommandType()
	if (cmd == types.CommandCreate || cmd == types.CommandUpdate) && cc.Data.Len() == 0 {
		cc.Reject(fmt.Sprintf("%s %s: payload is required", cmd, cc.EntityName))
		return false, nil
	}
	if err := cc.Filter.Validate(); err != nil {
		cc.Reject(err.Error())
		return false, nil
	}
	if (cmd == types.CommandUpdate || cmd == types.CommandDelete) && cc.Filter.IsEmpty() && !cc.PluginBool(AllowUnfiltered) {
		cc.Reject(fmt.Sprintf("%s %s: a filter is required", cmd, cc.EntityName))
		return false, nil
	}
	return true, nil
}

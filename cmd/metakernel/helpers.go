package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/metakernel/internal/engine"
	"github.com/mesh-intelligence/metakernel/pkg/kernel"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// openKernel builds and attaches a kernel from the loaded config. The
// caller must Close it.
func openKernel(ctx context.Context) (*kernel.Kernel, error) {
	k, err := kernel.New(kernel.Options{Config: config, Logger: logger})
	if err != nil {
		return nil, err
	}
	if err := k.Attach(ctx); err != nil {
		return nil, err
	}
	return k, nil
}

// parsePayload decodes a JSON object, keeping key order. Empty input is an
// empty payload.
func parsePayload(s string) (*types.Payload, error) {
	p := &types.Payload{}
	if strings.TrimSpace(s) == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(s), p); err != nil {
		return nil, fmt.Errorf("invalid --data: %w", err)
	}
	return p, nil
}

// parseFilter accepts either a full filter, {"conditions":[...]}, or a
// shorthand object whose entries become equality conditions in order.
func parseFilter(s string) (types.Filter, error) {
	if strings.TrimSpace(s) == "" {
		return types.EmptyFilter(), nil
	}
	if !gjson.Valid(s) {
		return types.Filter{}, fmt.Errorf("%w: --filter is not valid JSON", types.ErrInvalidFilter)
	}
	if gjson.Get(s, "conditions").IsArray() {
		var f types.Filter
		if err := json.Unmarshal([]byte(s), &f); err != nil {
			return types.Filter{}, fmt.Errorf("%w: %v", types.ErrInvalidFilter, err)
		}
		return f, f.Validate()
	}

	var eq types.Payload
	if err := json.Unmarshal([]byte(s), &eq); err != nil {
		return types.Filter{}, fmt.Errorf("%w: %v", types.ErrInvalidFilter, err)
	}
	f := types.EmptyFilter()
	eq.Range(func(k string, v any) bool {
		f = f.Where(k, types.OpEq, v)
		return true
	})
	return f, nil
}

// userErrors are failures caused by the request rather than the system.
var userErrors = []error{
	types.ErrUnknownField,
	types.ErrFieldRequired,
	types.ErrTypeMismatch,
	types.ErrInvalidFilter,
	types.ErrPayloadRequired,
	types.ErrModelNotFound,
	types.ErrAbstractModel,
	types.ErrShapeNotFound,
	types.ErrUnknownContextKind,
	types.ErrEntityNameRequired,
	types.ErrPropertyNotFound,
	types.ErrNotFound,
}

// recordMissing returns ErrNotFound when a command addressed a single
// record by id and matched nothing.
func recordMissing(entity, id string, res types.Result) error {
	if id == "" || !res.Completed() {
		return nil
	}
	var n int
	switch v := res.Data.(type) {
	case types.WriteResult:
		n = v.Affected
	case []types.Record:
		n = len(v)
	default:
		return nil
	}
	if n > 0 {
		return nil
	}
	return fmt.Errorf("%w: %s/%s", types.ErrNotFound, entity, id)
}

// exitCodeFor maps an execution error to a process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	if k, ok := engine.KindOf(err); ok && k == engine.KindRequest {
		return exitUserError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

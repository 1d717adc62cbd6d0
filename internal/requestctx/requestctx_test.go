package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithTenantID(context.Background(), "acme")
	ctx = WithUserID(ctx, "u-1")
	ctx = WithRequestID(ctx, "req-9")

	assert.Equal(t, Info{TenantID: "acme", UserID: "u-1", RequestID: "req-9"}, FromContext(ctx))
}

func TestMissingValues(t *testing.T) {
	assert.Equal(t, Info{}, FromContext(context.Background()))
	//nolint:staticcheck // nil context is part of the contract.
	assert.Equal(t, "", UserID(nil))
}

func TestWithInfoSkipsEmpty(t *testing.T) {
	ctx := WithInfo(context.Background(), Info{UserID: "u-2"})
	assert.Equal(t, "u-2", UserID(ctx))
	assert.Equal(t, "", TenantID(ctx))

	//nolint:staticcheck // nil context is part of the contract.
	ctx = WithInfo(nil, Info{})
	assert.NotNil(t, ctx)
}

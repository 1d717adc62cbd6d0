// Package requestctx carries cross-cutting request identifiers on a
// context.Context. Handlers read them here instead of from the command
// context.
package requestctx

import "context"

type tenantIDContextKey struct{}

type userIDContextKey struct{}

type requestIDContextKey struct{}

// Info is the set of identifiers attached to a request.
type Info struct {
	TenantID  string `json:"tenant_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WithTenantID stores a tenant identifier in context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return with(ctx, tenantIDContextKey{}, tenantID)
}

// WithUserID stores a user identifier in context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return with(ctx, userIDContextKey{}, userID)
}

// WithRequestID stores a request identifier in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return with(ctx, requestIDContextKey{}, requestID)
}

// WithInfo stores every non-empty identifier of info in context.
func WithInfo(ctx context.Context, info Info) context.Context {
	if info.TenantID != "" {
		ctx = WithTenantID(ctx, info.TenantID)
	}
	if info.UserID != "" {
		ctx = WithUserID(ctx, info.UserID)
	}
	if info.RequestID != "" {
		ctx = WithRequestID(ctx, info.RequestID)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// TenantID returns the tenant identifier stored in context.
func TenantID(ctx context.Context) string {
	return value(ctx, tenantIDContextKey{})
}

// UserID returns the user identifier stored in context.
func UserID(ctx context.Context) string {
	return value(ctx, userIDContextKey{})
}

// RequestID returns the request identifier stored in context.
func RequestID(ctx context.Context) string {
	return value(ctx, requestIDContextKey{})
}

// FromContext returns every identifier stored in context.
func FromContext(ctx context.Context) Info {
	return Info{TenantID: TenantID(ctx), UserID: UserID(ctx), RequestID: RequestID(ctx)}
}

func with(ctx context.Context, key any, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

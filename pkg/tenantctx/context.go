// Package tenantctx carries the tenant and acting-user identity through a
// request context. The identity is injected once by the auth middleware and
// read by every service call; nothing is stored outside the context, so it
// dies with the request.
package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type tenantKey struct{}
type userKey struct{}

// WithTenantID stores the tenant ID in the context.
func WithTenantID(ctx context.Context, tenantID snowflake.ID) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// WithUserID stores the acting user ID in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, strings.TrimSpace(userID))
}

// TenantID returns the tenant ID from context, if set.
func TenantID(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(tenantKey{}).(type) {
	case snowflake.ID:
		if typed != 0 {
			return typed, true
		}
	case int64:
		if typed != 0 {
			return snowflake.ID(typed), true
		}
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil && parsed != 0 {
			return parsed, true
		}
	}
	return 0, false
}

// UserID returns the acting user ID from context, if set.
func UserID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(userKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

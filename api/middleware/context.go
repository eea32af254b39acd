package middleware

import (
	"context"

	"github.com/angelmondragon/smartsales/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
	ctxCartID   contextKey = "cart_id"
)

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) enums.Role {
	return enums.Role(stringValue(ctx, ctxRole))
}

// AccessIDFromContext returns the gateway session id (the JWT jti).
func AccessIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccessID)
}

// CartIDFromContext returns the visitor cart key resolved by VisitorCart.
func CartIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxCartID)
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, ctxUserID, userID)
}

// WithRole injects the authenticated role into the context.
func WithRole(ctx context.Context, role enums.Role) context.Context {
	return withValue(ctx, ctxRole, role.String())
}

// WithAccessID injects the gateway session id into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	return withValue(ctx, ctxAccessID, accessID)
}

// WithCartID injects the visitor cart key into the context.
func WithCartID(ctx context.Context, cartID string) context.Context {
	return withValue(ctx, ctxCartID, cartID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

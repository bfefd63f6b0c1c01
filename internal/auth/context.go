// ABOUTME: Request context propagation for the authenticated principal
// ABOUTME: Provides WithPrincipal/PrincipalFromContext over a typed key

package auth

import (
	"context"

	"github.com/fernworks/authgate/internal/store"
)

// principalKey is the key type for storing the principal in context.Context.
type principalKey struct{}

// WithPrincipal returns a new context with the resolved user attached.
// Only the auth gate populates this; handlers treat the value as read-only.
func WithPrincipal(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, principalKey{}, user)
}

// PrincipalFromContext retrieves the authenticated user from the context,
// returning nil if not present.
func PrincipalFromContext(ctx context.Context) *store.User {
	val := ctx.Value(principalKey{})
	if val == nil {
		return nil
	}
	user, ok := val.(*store.User)
	if !ok {
		return nil
	}
	return user
}

// MustPrincipal retrieves the authenticated user from the context, panicking
// if not present. Use only in handlers wrapped by the auth gate.
func MustPrincipal(ctx context.Context) *store.User {
	user := PrincipalFromContext(ctx)
	if user == nil {
		panic("auth: principal not found in context")
	}
	return user
}

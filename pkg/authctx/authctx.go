// Package authctx carries the authenticated principal through a request context.
package authctx

import (
	"context"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
)

type principalKey struct{}

// Principal is the identity derived from a verified bearer token.
// Roles is empty today; tokens do not carry role claims.
type Principal struct {
	UserID string
	Roles  []entity.Role
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}

// UserID returns the authenticated user id or "".
func UserID(ctx context.Context) string {
	p, _ := PrincipalFrom(ctx)
	return p.UserID
}

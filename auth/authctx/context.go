// Package authctx carries the resolved principal and the presented bearer
// token through a request context.
//
//	ctx = authctx.WithPrincipal(ctx, p)
//	p, ok := authctx.Principal(ctx)
package authctx

import (
	"context"
	"errors"

	"github.com/kbukum/clinic/auth"
)

type principalKey struct{}

type tokenKey struct{}

// ErrNoPrincipal is returned when the context holds no principal.
var ErrNoPrincipal = errors.New("authctx: no principal in context")

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// Principal returns the principal stored by WithPrincipal.
func Principal(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(auth.Principal)
	return p, ok
}

// PrincipalOrError is Principal with ErrNoPrincipal for the missing case.
func PrincipalOrError(ctx context.Context) (auth.Principal, error) {
	p, ok := Principal(ctx)
	if !ok {
		return auth.Principal{}, ErrNoPrincipal
	}
	return p, nil
}

// WithToken stores the raw bearer token so logout can revoke it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Token returns the raw bearer token, or "".
func Token(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

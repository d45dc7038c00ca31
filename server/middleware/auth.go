package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/authctx"
)

// Resolver turns a bearer token into a principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (auth.Principal, error)
}

// PermissionChecker gates routes by role permission.
type PermissionChecker interface {
	RequirePermission(p auth.Principal, permission string) error
}

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate rejects requests without a bearer token that resolves to a
// live principal. On success the principal and the raw token are stored in
// the request context (see authctx).
func Authenticate(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.Request)
		if !ok {
			unauthenticated(c, auth.ErrInvalidOrExpiredCredential)
			return
		}
		p, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			unauthenticated(c, err)
			return
		}
		ctx := authctx.WithToken(authctx.WithPrincipal(c.Request.Context(), p), token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OptionalAuth stores the bearer token, and the principal when it
// resolves, but never rejects the request.
func OptionalAuth(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.Request)
		if !ok {
			c.Next()
			return
		}
		ctx := authctx.WithToken(c.Request.Context(), token)
		if p, err := resolver.Resolve(ctx, token); err == nil {
			ctx = authctx.WithPrincipal(ctx, p)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission lets the request through only when the authenticated
// principal's role grants permission. Use after Authenticate.
func RequirePermission(checker PermissionChecker, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := authctx.Principal(c.Request.Context())
		if !ok {
			unauthenticated(c, auth.ErrInvalidOrExpiredCredential)
			return
		}
		if err := checker.RequirePermission(p, permission); err != nil {
			abort(c, auth.Public(err))
			return
		}
		c.Next()
	}
}

func unauthenticated(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrInvalidOrExpiredCredential) {
		c.Header("WWW-Authenticate", `Bearer realm="clinic"`)
	}
	abort(c, auth.Public(err))
}

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/jwt"
	"github.com/kbukum/clinic/logger"
)

// Resolver turns a bearer token into the live principal it was issued to.
// It only reads, so one Resolver serves all requests concurrently.
type Resolver struct {
	tokens *jwt.Service[*Claims]
	store  Store
	loader auth.PrincipalLoader
	now    func() time.Time
	log    *logger.Logger
	tel    *telemetry
}

// NewResolver creates a resolver.
func NewResolver(tokens *jwt.Service[*Claims], store Store, loader auth.PrincipalLoader, opts ...Option) *Resolver {
	o := buildOptions(opts)
	return &Resolver{tokens: tokens, store: store, loader: loader, now: o.now, log: o.log, tel: newTelemetry()}
}

// Resolve returns the principal behind token. Every way a token can be bad
// (forged, malformed, expired, revoked, or its account deleted) yields an
// error wrapping auth.ErrInvalidOrExpiredCredential. Only a failure of the
// principal loader surfaces as a different error.
func (r *Resolver) Resolve(ctx context.Context, token string) (auth.Principal, error) {
	ctx, span := r.tel.start(ctx, "session.resolve")
	defer span.End()

	p, err := r.resolve(ctx, token)
	r.tel.record(ctx, r.tel.resolutions, span, err)
	if err != nil {
		r.log.WithContext(ctx).Debug("credential rejected", logger.Fields(logger.FieldError, err.Error()))
	}
	return p, err
}

func (r *Resolver) resolve(ctx context.Context, token string) (auth.Principal, error) {
	claims, err := r.tokens.Parse(token)
	if err != nil {
		return auth.Principal{}, invalid("envelope", err)
	}
	if claims.ID == "" {
		return auth.Principal{}, invalid("missing session id", nil)
	}
	ref, err := auth.ParseRef(claims.Subject)
	if err != nil {
		return auth.Principal{}, invalid("subject", err)
	}

	key := Key(claims.ID)
	rec, err := r.store.Get(ctx, key)
	if err != nil {
		r.log.WithContext(ctx).Warn("session store lookup failed", logger.Fields(
			logger.FieldSessionKey, shortKey(key),
			logger.FieldError, err.Error(),
		))
		return auth.Principal{}, invalid("store", err)
	}
	if rec == nil {
		return auth.Principal{}, invalid("no session", nil)
	}
	if !r.now().Before(rec.ExpiresAt) {
		return auth.Principal{}, invalid("session expired", nil)
	}
	if rec.Ref() != ref {
		return auth.Principal{}, invalid("subject does not match session", nil)
	}

	p, ok, err := r.loader.LoadPrincipal(ctx, ref)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("session: load principal: %w", err)
	}
	if !ok || p.Ref() != ref {
		return auth.Principal{}, invalid("principal gone", nil)
	}
	return p, nil
}

func invalid(reason string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s: %v", auth.ErrInvalidOrExpiredCredential, reason, cause)
	}
	return fmt.Errorf("%w: %s", auth.ErrInvalidOrExpiredCredential, reason)
}

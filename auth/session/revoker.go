package session

import (
	"context"
	"fmt"

	"github.com/kbukum/clinic/auth/jwt"
	"github.com/kbukum/clinic/logger"
)

// Revoker ends sessions.
type Revoker struct {
	tokens *jwt.Service[*Claims]
	store  Store
	log    *logger.Logger
	tel    *telemetry
}

// NewRevoker creates a revoker.
func NewRevoker(tokens *jwt.Service[*Claims], store Store, opts ...Option) *Revoker {
	o := buildOptions(opts)
	return &Revoker{tokens: tokens, store: store, log: o.log, tel: newTelemetry()}
}

// Revoke deletes the session behind token. Expired tokens are accepted.
// Tokens that are unknown, already revoked or not ours are ignored, so
// Revoke is idempotent. Only a store failure is returned.
func (r *Revoker) Revoke(ctx context.Context, token string) error {
	ctx, span := r.tel.start(ctx, "session.revoke")
	defer span.End()

	err := r.revoke(ctx, token)
	r.tel.record(ctx, r.tel.revocations, span, err)
	return err
}

func (r *Revoker) revoke(ctx context.Context, token string) error {
	claims, err := r.tokens.ParseIgnoringExpiry(token)
	if err != nil || claims.ID == "" {
		return nil
	}
	key := Key(claims.ID)
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("session: revoke: %w", err)
	}
	r.log.WithContext(ctx).Info("session revoked", logger.Fields(
		logger.FieldPrincipal, claims.Subject,
		logger.FieldSessionKey, shortKey(key),
	))
	return nil
}

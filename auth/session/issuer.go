package session

import (
	"context"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/jwt"
	"github.com/kbukum/clinic/auth/password"
	"github.com/kbukum/clinic/logger"
)

// sessionIDBytes is the entropy of a session id.
const sessionIDBytes = 32

// Issuer creates sessions.
type Issuer struct {
	tokens *jwt.Service[*Claims]
	store  Store
	ttl    time.Duration
	now    func() time.Time
	log    *logger.Logger
	tel    *telemetry
}

// NewIssuer creates an issuer with the lifetime from cfg.
func NewIssuer(cfg Config, tokens *jwt.Service[*Claims], store Store, opts ...Option) *Issuer {
	cfg.ApplyDefaults()
	o := buildOptions(opts)
	return &Issuer{tokens: tokens, store: store, ttl: cfg.TTL, now: o.now, log: o.log, tel: newTelemetry()}
}

// TTL returns the lifetime of issued credentials.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue creates a new session for p. Every call yields an independent
// session; earlier ones stay valid.
func (i *Issuer) Issue(ctx context.Context, p auth.Principal) (Credential, error) {
	ctx, span := i.tel.start(ctx, "session.issue")
	defer span.End()

	cred, err := i.issue(ctx, p)
	if err != nil {
		span.RecordError(err)
	}
	return cred, err
}

func (i *Issuer) issue(ctx context.Context, p auth.Principal) (Credential, error) {
	if !p.Role.Valid() || p.ID <= 0 {
		return Credential{}, fmt.Errorf("session: cannot issue for principal %s", p.Ref())
	}

	sid, err := password.GenerateToken(sessionIDBytes)
	if err != nil {
		return Credential{}, fmt.Errorf("session: %w", err)
	}
	now := i.now()
	rec := Record{
		PrincipalID: p.ID,
		Role:        p.Role,
		IssuedAt:    now,
		ExpiresAt:   now.Add(i.ttl),
	}

	key := Key(sid)
	if err := i.store.Create(ctx, key, rec, i.ttl); err != nil {
		return Credential{}, fmt.Errorf("session: store: %w", err)
	}

	token, err := i.tokens.Sign(&Claims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   p.Ref().String(),
		ID:        sid,
		Issuer:    i.tokens.Issuer(),
		Audience:  audience(i.tokens.Audience()),
		IssuedAt:  gojwt.NewNumericDate(rec.IssuedAt),
		ExpiresAt: gojwt.NewNumericDate(ceilSecond(rec.ExpiresAt)),
	}})
	if err != nil {
		// Without a token the record is unreachable; drop it anyway.
		_ = i.store.Delete(ctx, key)
		return Credential{}, err
	}

	i.log.WithContext(ctx).Info("session issued", logger.Fields(
		logger.FieldPrincipal, p.Ref().String(),
		logger.FieldSessionKey, shortKey(key),
	))
	return Credential{
		Token:     token,
		TokenType: TokenType,
		SessionID: sid,
		Principal: p.Ref(),
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// ceilSecond rounds t up to the token's second precision. The record
// deadline stays exact and is what Resolve enforces.
func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}

func audience(aud string) gojwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return gojwt.ClaimStrings{aud}
}

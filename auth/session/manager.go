package session

import (
	"context"
	"fmt"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/jwt"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/util"
)

// Manager bundles the session operations behind one value for handlers.
type Manager struct {
	*Issuer
	*Resolver
	*Revoker
	authn auth.Authenticator
}

// NewManager wires an Issuer, Resolver and Revoker over the same token
// service and store.
func NewManager(cfg Config, tokens *jwt.Service[*Claims], store Store, authn auth.Authenticator, loader auth.PrincipalLoader, opts ...Option) *Manager {
	return &Manager{
		Issuer:   NewIssuer(cfg, tokens, store, opts...),
		Resolver: NewResolver(tokens, store, loader, opts...),
		Revoker:  NewRevoker(tokens, store, opts...),
		authn:    authn,
	}
}

// Login checks email and password and issues a credential. An unknown
// email and a wrong password both give auth.ErrInvalidCredentials, and in
// either case nothing is stored.
func (m *Manager) Login(ctx context.Context, email, password string) (Credential, error) {
	ctx, span := m.Issuer.tel.start(ctx, "session.login")
	defer span.End()

	cred, err := m.login(ctx, email, password)
	m.Issuer.tel.record(ctx, m.Issuer.tel.logins, span, err)
	return cred, err
}

func (m *Manager) login(ctx context.Context, email, password string) (Credential, error) {
	p, ok, err := m.authn.Authenticate(ctx, email, password)
	if err != nil {
		return Credential{}, fmt.Errorf("session: authenticate: %w", err)
	}
	if !ok {
		m.Issuer.log.WithContext(ctx).Debug("login rejected", logger.Fields("email", util.MaskEmail(email)))
		return Credential{}, auth.ErrInvalidCredentials
	}
	return m.Issue(ctx, p)
}

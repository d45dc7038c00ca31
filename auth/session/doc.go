// Package session issues, resolves and revokes bearer credentials.
//
// A credential has two halves. The client holds a signed token whose jti is
// a 256-bit random session id; the server holds a Record in a Store, keyed
// by the SHA-256 of that id. A token is only honoured while its Record
// exists and has not expired, so logging out is a single Store.Delete.
//
//	tokens, _ := session.NewTokenService(cfg.Auth.JWT)
//	m := session.NewManager(cfg.Session, tokens, store, repo, repo, session.WithLogger(log))
//	cred, err := m.Login(ctx, email, password)
//	p, err := m.Resolve(ctx, cred.Token)
//	err = m.Revoke(ctx, cred.Token)
package session

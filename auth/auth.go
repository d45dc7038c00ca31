package auth

import "context"

// Authenticator checks an email and password against persisted principals.
// ok is false when the email is unknown or the password does not match; err
// is reserved for infrastructure failures.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (p Principal, ok bool, err error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, email, password string) (Principal, bool, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, email, password string) (Principal, bool, error) {
	return f(ctx, email, password)
}

// PrincipalLoader loads a live principal by identity. ok is false when the
// account no longer exists.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, ref Ref) (p Principal, ok bool, err error)
}

// PrincipalLoaderFunc adapts a function to PrincipalLoader.
type PrincipalLoaderFunc func(ctx context.Context, ref Ref) (Principal, bool, error)

func (f PrincipalLoaderFunc) LoadPrincipal(ctx context.Context, ref Ref) (Principal, bool, error) {
	return f(ctx, ref)
}

// Package jwt signs and verifies the token envelope handed to clients.
//
// The service is generic over the claims type so each caller keeps its own
// claim fields:
//
//	svc, err := jwt.NewService(cfg, func() *Claims { return &Claims{} })
//	token, err := svc.Sign(&Claims{...})
//	claims, err := svc.Parse(token)
//
// Parse fails closed: any signature, algorithm, issuer, audience or time
// check failure yields an error wrapping ErrInvalidToken.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is wrapped by every parse failure.
var ErrInvalidToken = errors.New("jwt: invalid token")

// Service signs and parses tokens carrying claims of type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	method   gojwt.SigningMethod
	key      []byte
	newEmpty func() T
	now      func() time.Time
}

// Option configures a Service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for time-based claim checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService validates cfg and creates a Service. newEmpty returns a fresh
// claims value to decode into.
func NewService[T gojwt.Claims](cfg Config, newEmpty func() T, opts ...Option) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[T]{
		cfg:      cfg,
		method:   cfg.signingMethod(),
		key:      []byte(cfg.Secret),
		newEmpty: newEmpty,
		now:      o.now,
	}, nil
}

// Issuer returns the configured "iss" value.
func (s *Service[T]) Issuer() string { return s.cfg.Issuer }

// Audience returns the configured "aud" value.
func (s *Service[T]) Audience() string { return s.cfg.Audience }

// Sign returns the compact serialization of claims.
func (s *Service[T]) Sign(claims T) (string, error) {
	signed, err := gojwt.NewWithClaims(s.method, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and time claims. exp is required.
func (s *Service[T]) Parse(token string) (T, error) {
	return s.parse(token, s.parserOptions(
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
		gojwt.WithTimeFunc(s.now),
	)...)
}

// ParseIgnoringExpiry verifies the signature only. Revocation uses it so an
// expired token can still be logged out.
func (s *Service[T]) ParseIgnoringExpiry(token string) (T, error) {
	return s.parse(token, gojwt.WithValidMethods([]string{s.method.Alg()}), gojwt.WithoutClaimsValidation())
}

func (s *Service[T]) parse(token string, opts ...gojwt.ParserOption) (T, error) {
	var zero T
	if token == "" {
		return zero, ErrInvalidToken
	}
	claims := s.newEmpty()
	parsed, err := gojwt.ParseWithClaims(token, claims, s.keyFunc, opts...)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return zero, ErrInvalidToken
	}
	out, ok := parsed.Claims.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}
	return out, nil
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return s.key, nil
}

func (s *Service[T]) parserOptions(extra ...gojwt.ParserOption) []gojwt.ParserOption {
	opts := []gojwt.ParserOption{gojwt.WithValidMethods([]string{s.method.Alg()})}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience))
	}
	return append(opts, extra...)
}

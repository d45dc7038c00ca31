package session

import (
	"time"

	"github.com/kbukum/clinic/auth/jwt"
	"github.com/kbukum/clinic/logger"
)

// Option configures the issuer, resolver, revoker and manager.
type Option func(*options)

type options struct {
	now func() time.Time
	log *logger.Logger
}

// WithClock replaces time.Now. Use the same clock for the token service.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger. The default discards.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.WithComponent("session")
	return o
}

// NewTokenService creates the token envelope service for Claims.
func NewTokenService(cfg jwt.Config, opts ...jwt.Option) (*jwt.Service[*Claims], error) {
	return jwt.NewService(cfg, func() *Claims { return &Claims{} }, opts...)
}

package auth

import (
	"fmt"

	"github.com/kbukum/clinic/auth/jwt"
	"github.com/kbukum/clinic/auth/password"
)

// DefaultLoginRatePerMinute applies when login_rate_per_minute is unset.
const DefaultLoginRatePerMinute = 10

// Config holds authentication configuration.
//
//	auth:
//	  jwt:
//	    secret: "change-me-to-at-least-32-bytes-of-secret"
//	  password:
//	    algorithm: "bcrypt"
//	    bcrypt_cost: 12
//	  login_rate_per_minute: 10
type Config struct {
	JWT      jwt.Config      `yaml:"jwt" mapstructure:"jwt"`
	Password password.Config `yaml:"password" mapstructure:"password"`

	// LoginRatePerMinute throttles POST /login per client IP. Unset means
	// DefaultLoginRatePerMinute; an explicit 0 turns throttling off.
	LoginRatePerMinute *int `yaml:"login_rate_per_minute" mapstructure:"login_rate_per_minute"`

	// AllowUnownedCreate disables the ownership check when creating
	// appointments and prescriptions.
	AllowUnownedCreate bool `yaml:"allow_unowned_create" mapstructure:"allow_unowned_create"`
}

// ApplyDefaults sets defaults on all sub-configurations.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
	if c.LoginRatePerMinute == nil {
		rate := DefaultLoginRatePerMinute
		c.LoginRatePerMinute = &rate
	}
}

// LoginRate returns the per-minute login budget, 0 when throttling is off.
func (c *Config) LoginRate() int {
	if c.LoginRatePerMinute == nil {
		return DefaultLoginRatePerMinute
	}
	return *c.LoginRatePerMinute
}

// Validate checks all sub-configurations.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	if rate := c.LoginRate(); rate < 0 {
		return fmt.Errorf("auth.login_rate_per_minute must be >= 0 (got: %d)", rate)
	}
	return nil
}

// Describe returns a one-liner for the startup summary.
func (c *Config) Describe() string {
	return fmt.Sprintf("JWT(%s) password=%s login_rate=%d/min", c.JWT.Method, c.Password.Algorithm, c.LoginRate())
}

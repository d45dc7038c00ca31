package jwt

import (
	"errors"
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names a supported HMAC algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// MinSecretLength is the shortest accepted HMAC secret in bytes.
const MinSecretLength = 32

// Config configures the token envelope.
type Config struct {
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`
	// Issuer is the "iss" claim; checked on parse when set.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// Audience is the "aud" claim; checked on parse when set.
	Audience string `yaml:"audience" mapstructure:"audience"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.Issuer == "" {
		c.Issuer = "clinic-api"
	}
}

// Validate checks the secret and method.
func (c *Config) Validate() error {
	if c.signingMethod() == nil {
		return fmt.Errorf("unsupported signing method: %s", c.Method)
	}
	if len(c.Secret) < MinSecretLength {
		return errors.New("secret must be at least 32 bytes")
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return nil
	}
}

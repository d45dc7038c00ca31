package notify

import (
	"fmt"
	"time"
)

// Config tunes the background publisher.
//
//	notify:
//	  breaker_failures: 5
//	  breaker_timeout: "30s"
//	  max_in_flight: 64
type Config struct {
	BreakerFailures int           `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" mapstructure:"breaker_timeout"`
	MaxInFlight     int           `yaml:"max_in_flight" mapstructure:"max_in_flight"`
}

func (c *Config) ApplyDefaults() {
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout == 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.MaxInFlight == 0 {
		c.MaxInFlight = 64
	}
}

func (c *Config) Validate() error {
	if c.BreakerFailures < 1 {
		return fmt.Errorf("notify.breaker_failures must be >= 1 (got: %d)", c.BreakerFailures)
	}
	if c.BreakerTimeout <= 0 {
		return fmt.Errorf("notify.breaker_timeout must be positive (got: %s)", c.BreakerTimeout)
	}
	if c.MaxInFlight < 1 {
		return fmt.Errorf("notify.max_in_flight must be >= 1 (got: %d)", c.MaxInFlight)
	}
	return nil
}

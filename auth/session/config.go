package session

import (
	"fmt"
	"time"

	"github.com/kbukum/clinic/redis"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config configures session storage and lifetime.
//
//	session:
//	  store: "redis"
//	  ttl: "1h"
//	  key_prefix: "session"
type Config struct {
	Store     string        `yaml:"store" mapstructure:"store"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	KeyPrefix string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}

func (c *Config) ApplyDefaults() {
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.TTL == 0 {
		c.TTL = time.Hour
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "session"
	}
}

func (c *Config) Validate() error {
	if c.Store != StoreMemory && c.Store != StoreRedis {
		return fmt.Errorf("session.store must be %q or %q (got: %q)", StoreMemory, StoreRedis, c.Store)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive (got: %s)", c.TTL)
	}
	return nil
}

// NewStore builds the configured store. client may be nil for the memory
// store.
func NewStore(cfg Config, client *redis.Client, now func() time.Time) (Store, error) {
	switch cfg.Store {
	case StoreRedis:
		if client == nil {
			return nil, fmt.Errorf("session: redis store needs redis.enabled")
		}
		return NewRedisStore(client, cfg.KeyPrefix), nil
	case StoreMemory, "":
		return NewMemoryStore(now), nil
	default:
		return nil, fmt.Errorf("session: unknown store %q", cfg.Store)
	}
}

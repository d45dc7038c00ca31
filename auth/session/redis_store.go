package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/redis"
)

// RedisStore keeps records in redis with native key expiry.
type RedisStore struct {
	client *redis.Client
	store  *redis.TypedStore[Record]
	prefix string
}

var (
	_ Store               = (*RedisStore)(nil)
	_ component.Component = (*RedisStore)(nil)
)

// NewRedisStore creates a store writing under "<prefix>:<key>".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		store:  redis.NewTypedStore[Record](client, prefix),
		prefix: prefix,
	}
}

// Create issues SET key value NX PX ttl.
func (s *RedisStore) Create(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive (got: %s)", ttl)
	}
	err := s.store.Create(ctx, key, &rec, ttl)
	if errors.Is(err, redis.ErrKeyExists) {
		return ErrSessionExists
	}
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	return s.store.Load(ctx, key)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

func (s *RedisStore) Name() string { return "session-store" }

// Start checks the shared client is reachable. The client itself is owned
// by the redis component.
func (s *RedisStore) Start(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *RedisStore) Stop(context.Context) error { return nil }

func (s *RedisStore) Health(ctx context.Context) component.Health {
	h := component.Health{Name: s.Name(), Status: component.StatusHealthy}
	if err := s.client.Ping(ctx); err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
	}
	return h
}

func (s *RedisStore) Describe() component.Description {
	return component.Description{Name: "Sessions", Type: "redis", Details: "prefix=" + s.prefix}
}

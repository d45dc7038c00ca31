package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrKeyExists is returned by Create when the key is already present.
var ErrKeyExists = errors.New("redis: key already exists")

// TypedStore stores JSON-encoded values of type C under a key prefix.
type TypedStore[C any] struct {
	client    *Client
	keyPrefix string
}

// NewTypedStore creates a store. Keys become "<prefix>:<key>".
func NewTypedStore[C any](client *Client, keyPrefix string) *TypedStore[C] {
	return &TypedStore[C]{client: client, keyPrefix: keyPrefix}
}

// Key returns the full redis key for key.
func (s *TypedStore[C]) Key(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load decodes the value at key. A missing key returns (nil, nil).
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, err := s.client.Get(ctx, s.Key(key))
	if IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("typed store load: %w", err)
	}
	var val C
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, fmt.Errorf("typed store decode: %w", err)
	}
	return &val, nil
}

// Save encodes val and overwrites key. A ttl of 0 means no expiration.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store encode: %w", err)
	}
	if err := s.client.Set(ctx, s.Key(key), data, ttl); err != nil {
		return fmt.Errorf("typed store save: %w", err)
	}
	return nil
}

// Create writes val only if key is absent, with ttl, in one SET NX command.
// It returns ErrKeyExists when the key is taken.
func (s *TypedStore[C]) Create(ctx context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store encode: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.Key(key), data, ttl)
	if err != nil {
		return fmt.Errorf("typed store create: %w", err)
	}
	if !ok {
		return ErrKeyExists
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	if _, err := s.client.Del(ctx, s.Key(key)); err != nil {
		return fmt.Errorf("typed store delete: %w", err)
	}
	return nil
}

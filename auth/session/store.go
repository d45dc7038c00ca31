package session

import (
	"context"
	"time"

	"github.com/kbukum/clinic/auth/password"
)

// Store persists session records.
//
// Create must be atomic set-if-absent and must never overwrite an existing
// key. Get returns (nil, nil) for a missing or expired key. Delete of a
// missing key is not an error.
type Store interface {
	Create(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Get(ctx context.Context, key string) (*Record, error)
	Delete(ctx context.Context, key string) error
}

// Key derives the store key for a session id. Only the digest is stored.
func Key(sessionID string) string {
	return password.HashSHA256(sessionID)
}

// shortKey is the form of a store key that may appear in logs.
func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

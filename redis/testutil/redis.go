package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/redis"
)

// NewClient starts miniredis and returns a client connected to it. Both are
// closed when the test ends. Use the returned server to FastForward time.
func NewClient(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)

	cfg := redis.Config{Enabled: true, Addr: mini.Addr()}
	client, err := redis.New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("redis.New: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mini
}

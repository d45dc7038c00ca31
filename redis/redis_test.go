package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/redis"
	"github.com/kbukum/clinic/redis/testutil"
	"github.com/kbukum/clinic/security"
)

type entry struct {
	Owner string    `json:"owner"`
	At    time.Time `json:"at"`
}

func TestTypedStore_SaveLoadDelete(t *testing.T) {
	client, _ := testutil.NewClient(t)
	store := redis.NewTypedStore[entry](client, "test")
	ctx := context.Background()

	want := entry{Owner: "patient:1", At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.Save(ctx, "k1", &want, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, "k1")
	if err != nil || got == nil {
		t.Fatalf("Load = %v, %v", got, err)
	}
	if got.Owner != want.Owner || !got.At.Equal(want.At) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	got, err = store.Load(ctx, "k1")
	if err != nil || got != nil {
		t.Fatalf("Load after delete = %v, %v", got, err)
	}
}

func TestTypedStore_CreateIsExclusive(t *testing.T) {
	client, mini := testutil.NewClient(t)
	store := redis.NewTypedStore[entry](client, "session")
	ctx := context.Background()

	if err := store.Create(ctx, "abc", &entry{Owner: "patient:1"}, time.Minute); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := store.Create(ctx, "abc", &entry{Owner: "doctor:9"}, time.Minute)
	if !errors.Is(err, redis.ErrKeyExists) {
		t.Fatalf("second Create error = %v, want ErrKeyExists", err)
	}
	got, _ := store.Load(ctx, "abc")
	if got == nil || got.Owner != "patient:1" {
		t.Errorf("value overwritten: %+v", got)
	}
	if !mini.Exists("session:abc") {
		t.Error("expected prefixed key session:abc")
	}
	if ttl := mini.TTL("session:abc"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}
}

func TestTypedStore_Expiry(t *testing.T) {
	client, mini := testutil.NewClient(t)
	store := redis.NewTypedStore[entry](client, "")
	ctx := context.Background()

	_ = store.Create(ctx, "k", &entry{Owner: "x"}, 10*time.Second)
	mini.FastForward(9 * time.Second)
	if got, _ := store.Load(ctx, "k"); got == nil {
		t.Fatal("expected key before ttl")
	}
	mini.FastForward(2 * time.Second)
	if got, _ := store.Load(ctx, "k"); got != nil {
		t.Fatal("expected key gone after ttl")
	}
}

func TestTypedStore_CorruptValue(t *testing.T) {
	client, mini := testutil.NewClient(t)
	store := redis.NewTypedStore[entry](client, "p")
	if err := mini.Set("p:bad", "__import__('os')"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Load(context.Background(), "bad"); err == nil {
		t.Error("expected decode error for non-JSON value")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	_, mini := testutil.NewClient(t)
	ctx := context.Background()

	c := redis.NewComponent(redis.Config{Enabled: true, Addr: mini.Addr()}, testLogger())
	if h := c.Health(ctx); h.Status != "unhealthy" {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != "healthy" {
		t.Errorf("health after start = %s (%s)", h.Status, h.Message)
	}
	if c.Client() == nil {
		t.Fatal("expected client after start")
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestComponent_StartFailsWhenUnreachable(t *testing.T) {
	c := redis.NewComponent(redis.Config{Enabled: true, Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: 1}, testLogger())
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := redis.Config{Enabled: true, DB: -1}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative db")
	}
	disabled := redis.Config{}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled config should validate: %v", err)
	}

	halfPair := redis.Config{Enabled: true, TLS: security.TLSConfig{Enabled: true, CertFile: "c.pem"}}
	halfPair.ApplyDefaults()
	if err := halfPair.Validate(); err == nil {
		t.Error("expected error for a certificate without key")
	}
}

func TestNew_TLSCAMissing(t *testing.T) {
	cfg := redis.Config{Enabled: true, TLS: security.TLSConfig{Enabled: true, CAFile: "/does/not/exist.pem"}}
	if _, err := redis.New(cfg, logger.Nop()); err == nil {
		t.Error("expected error for unreadable CA file")
	}
}

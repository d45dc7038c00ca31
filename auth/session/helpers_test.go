package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *testClock { return &testClock{t: epoch} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// directory is an in-memory Authenticator and PrincipalLoader.
type directory struct {
	mu        sync.Mutex
	accounts  map[string]auth.Principal
	passwords map[string]string
}

func newDirectory(ps ...auth.Principal) *directory {
	d := &directory{accounts: map[string]auth.Principal{}, passwords: map[string]string{}}
	for _, p := range ps {
		d.accounts[p.Email] = p
		d.passwords[p.Email] = "pw-" + p.Email
	}
	return d
}

func (d *directory) Authenticate(_ context.Context, email, password string) (auth.Principal, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	email = strings.ToLower(email)
	p, ok := d.accounts[email]
	if !ok || d.passwords[email] != password {
		return auth.Principal{}, false, nil
	}
	return p, true, nil
}

func (d *directory) LoadPrincipal(_ context.Context, ref auth.Ref) (auth.Principal, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.accounts {
		if p.Ref() == ref {
			return p, true, nil
		}
	}
	return auth.Principal{}, false, nil
}

func (d *directory) remove(email string) {
	d.mu.Lock()
	delete(d.accounts, email)
	d.mu.Unlock()
}

var (
	alice = auth.Principal{ID: 1, Role: auth.RolePatient, Email: "alice@example.com"}
	bob   = auth.Principal{ID: 1, Role: auth.RoleDoctor, Email: "bob@example.com"}
)

func newTokens(t *testing.T, clock *testClock, secret string) *jwt.Service[*Claims] {
	t.Helper()
	tokens, err := NewTokenService(jwt.Config{Secret: secret}, jwt.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func newTestManager(t *testing.T, store Store, clock *testClock, dir *directory) *Manager {
	t.Helper()
	return NewManager(Config{}, newTokens(t, clock, testSecret), store, dir, dir, WithClock(clock.Now))
}

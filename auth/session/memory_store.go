package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/clinic/component"
)

type memoryEntry struct {
	rec      Record
	deadline time.Time
}

// MemoryStore is an in-process Store. Entries expire passively: an entry
// past its deadline is treated as absent and dropped when next touched.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var (
	_ Store               = (*MemoryStore)(nil)
	_ component.Component = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store. A nil clock means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), now: now}
}

func (s *MemoryStore) Create(_ context.Context, key string, rec Record, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive (got: %s)", ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.deadline) {
		return ErrSessionExists
	}
	s.entries[key] = memoryEntry{rec: rec, deadline: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.deadline) {
		delete(s.entries, key)
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Name() string { return "session-store" }

func (s *MemoryStore) Start(context.Context) error { return nil }

// Stop drops every session.
func (s *MemoryStore) Stop(context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Health(context.Context) component.Health {
	return component.Health{
		Name:    s.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d entries", s.Len()),
	}
}

func (s *MemoryStore) Describe() component.Description {
	return component.Description{Name: "Sessions", Type: "memory", Details: "in-process"}
}

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a single-process Store used in tests and local runs
// without redis. Expired keys are pruned on access.
type MemoryStore struct {
	mu        sync.Mutex
	deadlines map[string]time.Time

	// Now is swappable in tests.
	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deadlines: make(map[string]time.Time),
		Now:       time.Now,
	}
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.deadlines[key]
	if !ok {
		return false, nil
	}
	if !s.Now().Before(deadline) {
		delete(s.deadlines, key)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) SetWithTTL(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.deadlines[key]; ok && s.Now().Before(deadline) {
		return nil
	}
	s.deadlines[key] = s.Now().Add(ttl)
	return nil
}

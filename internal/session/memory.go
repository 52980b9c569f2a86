package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in-process. Fine for a single instance or for
// tests; swap for the redis store when running more than one replica.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]memoryEntry
}

type memoryEntry struct {
	payload Payload
	exp     time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Save(_ context.Context, token string, p Payload, ttl time.Duration) error {
	s.mu.Lock()
	s.m[token] = memoryEntry{payload: p, exp: time.Now().Add(ttl)}
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (Payload, error) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.m[token]
	s.mu.RUnlock()

	if !ok {
		return Payload{}, ErrNoSession
	}

	if now.After(e.exp) {
		s.mu.Lock()
		delete(s.m, token)
		s.mu.Unlock()

		return Payload{}, ErrNoSession
	}

	return e.payload, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()

	return nil
}

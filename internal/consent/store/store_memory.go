package store

import (
	"context"
	"sync"
)

// InMemoryStore keeps values in a map. It is the default backend and the
// one tests use.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{values: make(map[string]string)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Len reports how many keys are stored.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Health always succeeds; the map cannot become unreachable.
func (s *InMemoryStore) Health(context.Context) error {
	return nil
}

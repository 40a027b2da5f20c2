package store

import (
	"context"
	"maps"
	"sync"
)

// InMemoryStore keeps settings in process memory. Values are lost on restart.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{values: make(map[string]string)}
}

func (s *InMemoryStore) Load(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values), nil
}

func (s *InMemoryStore) Save(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.values, values)
	return nil
}

// SaveMissing writes only keys that are not set yet.
func (s *InMemoryStore) SaveMissing(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		if _, ok := s.values[k]; !ok {
			s.values[k] = v
		}
	}
	return nil
}

func (s *InMemoryStore) Ping(_ context.Context) error { return nil }

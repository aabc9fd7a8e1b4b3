package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (s *MemoryStore) Read(_ context.Context, keys []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := s.items[key]; ok {
			copied := make([]byte, len(value))
			copy(copied, value)
			result[key] = copied
		}
	}
	return result, nil
}

func (s *MemoryStore) Write(_ context.Context, items map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range items {
		copied := make([]byte, len(value))
		copy(copied, value)
		s.items[key] = copied
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.items, key)
	}
	return nil
}

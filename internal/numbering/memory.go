package numbering

import (
	"context"
	"sync"
)

// MemoryStore is a process-local counter store.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]int64)}
}

// IncrementAndGet implements Store.
func (s *MemoryStore) IncrementAndGet(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}

// Peek returns the current value of key without incrementing it.
func (s *MemoryStore) Peek(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key]
}

// Set overwrites a counter; used when restoring a snapshot.
func (s *MemoryStore) Set(key string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] = value
}

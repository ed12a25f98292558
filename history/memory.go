package history

import (
	"context"
	"sync"

	"github.com/taskmesh/taskmesh/core"
)

// InMemoryStore keeps run records in memory. Safe for concurrent use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []core.RunRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// SaveRun implements core.HistoryStore.
func (s *InMemoryStore) SaveRun(_ context.Context, rec core.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of all saved records in insertion order.
func (s *InMemoryStore) Records() []core.RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.RunRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of saved records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

package audit

import (
	"context"
	"sync"

	id "coinguard/pkg/domain"
)

// InMemoryStore holds entries in memory for tests and single-node runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.UserID][]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.UserID][]Entry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.UserID] = append(s.entries[entry.UserID], entry)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry{}, s.entries[userID]...), nil
}

// All returns every entry across users, in append order per user.
func (s *InMemoryStore) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, list := range s.entries {
		out = append(out, list...)
	}
	return out
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[id.UserID][]Entry)
}

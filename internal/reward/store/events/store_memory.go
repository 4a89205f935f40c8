package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	"coinguard/pkg/platform/sentinel"
)

type pairKey struct {
	userID id.UserID
	action id.Action
}

// MemoryStore is an in-memory event store for tests and single-node demos.
// Events are kept per (user, action) in append order.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[pairKey][]*models.ActionEvent
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[pairKey][]*models.ActionEvent)}
}

func (s *MemoryStore) Append(_ context.Context, event *models.ActionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *event
	key := pairKey{userID: event.UserID, action: event.Action}
	s.events[key] = append(s.events[key], &clone)
	return nil
}

func (s *MemoryStore) MostRecent(_ context.Context, userID id.UserID, action id.Action) (*models.ActionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.events[pairKey{userID: userID, action: action}]
	if len(list) == 0 {
		return nil, sentinel.ErrNotFound
	}

	latest := list[0]
	for _, e := range list[1:] {
		if e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	clone := *latest
	return &clone, nil
}

func (s *MemoryStore) CountInWindow(_ context.Context, userID id.UserID, action id.Action, start, end time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.events[pairKey{userID: userID, action: action}] {
		if !e.CreatedAt.Before(start) && e.CreatedAt.Before(end) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ListSince(_ context.Context, userID id.UserID, action id.Action, since time.Time) ([]*models.ActionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ActionEvent
	for _, e := range s.events[pairKey{userID: userID, action: action}] {
		if !e.CreatedAt.Before(since) {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

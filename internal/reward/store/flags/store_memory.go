package flags

import (
	"context"
	"maps"
	"sort"
	"sync"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// MemoryStore is an in-memory Store for tests and single-node deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	flags map[id.UserID][]*models.SuspicionFlag
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flags: make(map[id.UserID][]*models.SuspicionFlag),
	}
}

func (s *MemoryStore) Append(_ context.Context, flag *models.SuspicionFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flags[flag.UserID] = append(s.flags[flag.UserID], cloneFlag(flag))
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.SuspicionFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.flags[userID]
	out := make([]*models.SuspicionFlag, 0, len(stored))
	for _, f := range stored {
		out = append(out, cloneFlag(f))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneFlag(f *models.SuspicionFlag) *models.SuspicionFlag {
	c := *f
	if f.Evidence != nil {
		c.Evidence = maps.Clone(f.Evidence)
	}
	return &c
}

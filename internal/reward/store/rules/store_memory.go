package rules

import (
	"context"
	"sort"
	"sync"
	"time"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	"coinguard/pkg/platform/sentinel"
)

// MemoryStore is an in-memory rule store for tests and single-node demos.
type MemoryStore struct {
	mu    sync.RWMutex
	rules map[id.Action]*models.ActionRule
}

// NewMemoryStore creates an empty in-memory rule store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: make(map[id.Action]*models.ActionRule)}
}

// Get returns the rule for an action, or sentinel.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, action id.Action) (*models.ActionRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[action]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *rule
	return &clone, nil
}

// List returns all rules sorted by action name.
func (s *MemoryStore) List(_ context.Context) ([]*models.ActionRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ActionRule, 0, len(s.rules))
	for _, rule := range s.rules {
		clone := *rule
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out, nil
}

// Put inserts or replaces a rule. Used by seeding and tests; the validator
// never writes rules.
func (s *MemoryStore) Put(_ context.Context, rule *models.ActionRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rule
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	clone.UpdatedAt = time.Now()
	s.rules[rule.Action] = &clone
	return nil
}

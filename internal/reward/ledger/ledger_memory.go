package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"coinguard/internal/reward/models"
	"coinguard/internal/reward/store/events"
	id "coinguard/pkg/domain"
)

// Memory is an in-memory Awarder backed by the shared event store, so the
// cooldown and cap reads observe every award. Race safety comes from the
// orchestrator's per-pair mutex; this implementation does not re-check.
type Memory struct {
	mu       sync.RWMutex
	balances map[id.UserID]int
	events   events.Store
}

// NewMemory creates a Memory awarder appending into the given event store.
func NewMemory(eventStore events.Store) *Memory {
	return &Memory{
		balances: make(map[id.UserID]int),
		events:   eventStore,
	}
}

func (m *Memory) Award(ctx context.Context, userID id.UserID, rule *models.ActionRule, meta models.ClientMetadata, now time.Time) (*models.ActionEvent, error) {
	event := &models.ActionEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    rule.Action,
		Amount:    rule.Amount,
		CreatedAt: now,
		Metadata:  meta,
	}
	if err := m.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append award event: %w", err)
	}

	m.mu.Lock()
	m.balances[userID] += rule.Amount
	m.mu.Unlock()
	return event, nil
}

// Balance returns the user's accumulated coins.
func (m *Memory) Balance(userID id.UserID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[userID]
}

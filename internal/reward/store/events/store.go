// Package events provides the append-only action history store feeding the
// cooldown, daily-cap, and suspicion checks.
package events

import (
	"context"
	"time"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// Store is the persistence contract for action events. Events are immutable
// once written; there is no update or delete.
type Store interface {
	// Append persists a new event. The event's CreatedAt must already be set
	// from the server clock.
	Append(ctx context.Context, event *models.ActionEvent) error

	// MostRecent returns the latest event for (user, action), or
	// sentinel.ErrNotFound when the user has no history for the action.
	MostRecent(ctx context.Context, userID id.UserID, action id.Action) (*models.ActionEvent, error)

	// CountInWindow counts events for (user, action) with
	// start <= CreatedAt < end.
	CountInWindow(ctx context.Context, userID id.UserID, action id.Action, start, end time.Time) (int, error)

	// ListSince returns events for (user, action) with CreatedAt >= since,
	// most recent first.
	ListSince(ctx context.Context, userID id.UserID, action id.Action, since time.Time) ([]*models.ActionEvent, error)
}

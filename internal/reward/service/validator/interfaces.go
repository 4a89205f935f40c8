package validator

import (
	"context"
	"time"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	"coinguard/pkg/platform/audit"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// RuleStore provides read access to the action rule registry. Rules are
// authored elsewhere; the validator only reads them.
type RuleStore interface {
	// Get returns the rule for an action, or sentinel.ErrNotFound.
	Get(ctx context.Context, action id.Action) (*models.ActionRule, error)
}

// EventStore provides the event history reads the policy checks need.
type EventStore interface {
	// MostRecent returns the newest event for the pair, or
	// sentinel.ErrNotFound when the user has never earned this action.
	MostRecent(ctx context.Context, userID id.UserID, action id.Action) (*models.ActionEvent, error)

	// CountInWindow counts events with start <= created_at < end.
	CountInWindow(ctx context.Context, userID id.UserID, action id.Action, start, end time.Time) (int, error)

	// ListSince returns events at or after since, most recent first.
	ListSince(ctx context.Context, userID id.UserID, action id.Action, since time.Time) ([]*models.ActionEvent, error)
}

// FlagStore persists suspicion flags raised during validation.
type FlagStore interface {
	Append(ctx context.Context, flag *models.SuspicionFlag) error
}

// Awarder is the external award primitive: atomically credit the amount and
// append the event. A CodeConflict error signals a lost cooldown race.
type Awarder interface {
	Award(ctx context.Context, userID id.UserID, rule *models.ActionRule, meta models.ClientMetadata, now time.Time) (*models.ActionEvent, error)
}

// AuditPublisher receives the security log entry written for every call.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

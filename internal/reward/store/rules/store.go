// Package rules provides read access to action reward policies. Rules are
// authored by an external admin surface; everything here is read-only from
// the validator's perspective.
package rules

import (
	"context"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// Store is the read-side contract for rule lookups.
// Implementations return sentinel.ErrNotFound (optionally wrapped) when no
// rule exists for the action; the validator treats that the same as an
// inactive rule.
type Store interface {
	// Get returns the rule for an action.
	Get(ctx context.Context, action id.Action) (*models.ActionRule, error)

	// List returns all rules, for read-only admin views.
	List(ctx context.Context) ([]*models.ActionRule, error)
}

// Package flags persists suspicion flags raised by the pattern detector.
// Flags are append-only evidence for later investigation; nothing in the
// validation path ever reads them back.
package flags

import (
	"context"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// Store is the persistence contract for suspicion flags.
type Store interface {
	// Append records a new flag.
	Append(ctx context.Context, flag *models.SuspicionFlag) error

	// ListByUser returns all flags for a user, most recent first.
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.SuspicionFlag, error)
}

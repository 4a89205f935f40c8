// Package ledger ships reference implementations of the award primitive:
// atomically append the reward event and credit the user's coin balance.
// The validator treats the primitive as an opaque collaborator; any other
// implementation of the same contract can replace these.
package ledger

import (
	"context"
	"time"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// Awarder is the award primitive port.
type Awarder interface {
	// Award credits rule.Amount to the user and appends the event. The
	// returned event carries the authoritative server timestamp. A
	// CodeConflict error means another award for the same pair won the
	// race inside the rule's cooldown window.
	Award(ctx context.Context, userID id.UserID, rule *models.ActionRule, meta models.ClientMetadata, now time.Time) (*models.ActionEvent, error)
}

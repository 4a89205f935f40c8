package audit

import (
	"context"

	id "coinguard/pkg/domain"
)

// Store is the persistence contract for security log entries. Entries are
// append-only; there is no update or delete.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Entry, error)
}

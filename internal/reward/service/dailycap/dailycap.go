// Package dailycap implements the per-action daily cap check. The cap counts
// successful events inside the current calendar day in the reference
// timezone; attempts that were rejected never count.
package dailycap

import (
	"context"
	"fmt"
	"time"

	"coinguard/internal/reward/config"
	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// Counter is the slice of the event store the cap check needs.
type Counter interface {
	CountInWindow(ctx context.Context, userID id.UserID, action id.Action, start, end time.Time) (int, error)
}

// Check decides whether the user is still under the daily cap for an action.
// A rule with no MaxPerDay is uncapped and always passes.
func Check(ctx context.Context, counter Counter, rule *models.ActionRule, userID id.UserID, now time.Time) (models.Decision, error) {
	if rule.MaxPerDay == nil {
		return models.Allow(), nil
	}

	start, end := config.DayBounds(now)
	count, err := counter.CountInWindow(ctx, userID, rule.Action, start, end)
	if err != nil {
		return models.Decision{}, fmt.Errorf("count daily events: %w", err)
	}
	if count >= *rule.MaxPerDay {
		return models.RejectAfter(models.ReasonDailyLimitReached, retryAfterSeconds(end.Sub(now))), nil
	}
	return models.Allow(), nil
}

func retryAfterSeconds(remaining time.Duration) int {
	secs := int(remaining / time.Second)
	if remaining%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

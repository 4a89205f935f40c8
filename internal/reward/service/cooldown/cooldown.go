// Package cooldown implements the per-action cooldown check: a fixed quiet
// interval after each successful event, or a once-per-calendar-day rule for
// daily actions.
package cooldown

import (
	"time"

	"coinguard/internal/reward/config"
	"coinguard/internal/reward/models"
)

// Check decides whether the cooldown for an action has elapsed. The caller
// passes the user's most recent successful event for this action, or nil if
// none exists. now must come from the server clock, never client input.
func Check(rule *models.ActionRule, last *models.ActionEvent, now time.Time) models.Decision {
	if last == nil {
		return models.Allow()
	}

	if rule.OncePerDay {
		// No retry-after hint: the action is simply unavailable until the
		// next calendar day.
		if config.SameCalendarDay(last.CreatedAt, now) {
			return models.Reject(models.ReasonCooldownActive)
		}
		return models.Allow()
	}

	if rule.CooldownSeconds <= 0 {
		return models.Allow()
	}

	elapsed := now.Sub(last.CreatedAt)
	window := time.Duration(rule.CooldownSeconds) * time.Second
	if elapsed >= window {
		return models.Allow()
	}
	return models.RejectAfter(models.ReasonCooldownActive, retryAfterSeconds(window-elapsed))
}

// retryAfterSeconds rounds a remaining duration up to whole seconds so the
// client never retries inside the window.
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

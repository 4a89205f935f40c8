// Package models defines the data model of the reward-action validation
// core: rules, events, suspicion flags, and the tagged results returned by
// the policy checks.
package models

import (
	"time"

	"github.com/google/uuid"

	id "coinguard/pkg/domain"
)

// RejectReason identifies why a validation call was denied. Reasons are
// stable identifiers; human-readable text comes from Message().
type RejectReason string

const (
	ReasonNotAuthorized      RejectReason = "not_authorized"
	ReasonCooldownActive     RejectReason = "cooldown_active"
	ReasonDailyLimitReached  RejectReason = "daily_limit_reached"
	ReasonSuspiciousActivity RejectReason = "suspicious_activity"
)

// Message returns the user-facing text for a rejection. The suspicious case
// is deliberately vague: revealing which heuristic fired would tip off
// automated abusers.
func (r RejectReason) Message() string {
	switch r {
	case ReasonNotAuthorized:
		return "this action is not eligible for rewards"
	case ReasonCooldownActive:
		return "this action was rewarded recently, try again later"
	case ReasonDailyLimitReached:
		return "daily reward limit reached for this action"
	case ReasonSuspiciousActivity:
		return "suspicious activity detected"
	default:
		return "request denied"
	}
}

// FlagType classifies a suspicion finding.
type FlagType string

const (
	FlagRapidFire     FlagType = "rapid_fire_actions"
	FlagRegularTiming FlagType = "regular_timing_pattern"
)

// ClientMetadata captures request-edge information stored with events and
// audit entries. Opaque to the policy checks.
type ClientMetadata struct {
	IPAddress string            `json:"ip_address"`
	UserAgent string            `json:"user_agent"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// ActionRule is the policy for one action kind. Rules are authored by an
// external admin surface; the validator reads them and never mutates them.
type ActionRule struct {
	Action          id.Action `json:"action"`
	CooldownSeconds int       `json:"cooldown_seconds"`
	OncePerDay      bool      `json:"once_per_day"`
	MaxPerDay       *int      `json:"max_per_day,omitempty"`
	Amount          int       `json:"amount"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ActionEvent is one successful reward-earning event. Events are append-only
// and immutable; CreatedAt is always the server clock, never client input,
// and is the sole basis for cooldown and cap math.
type ActionEvent struct {
	ID        uuid.UUID      `json:"id"`
	UserID    id.UserID      `json:"user_id"`
	Action    id.Action      `json:"action"`
	Amount    int            `json:"amount"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  ClientMetadata `json:"metadata"`
}

// SuspicionFlag records a heuristic finding for later investigation.
// Evidence holds the numbers that triggered the flag (counts, variance,
// raw deltas) so thresholds can be tuned against real data.
type SuspicionFlag struct {
	ID        uuid.UUID      `json:"id"`
	UserID    id.UserID      `json:"user_id"`
	Action    id.Action      `json:"action"`
	FlagType  FlagType       `json:"flag_type"`
	Evidence  map[string]any `json:"evidence"`
	CreatedAt time.Time      `json:"created_at"`
}

// Decision is the tagged result of a single policy check.
type Decision struct {
	Allowed           bool
	Reason            RejectReason
	RetryAfterSeconds int
}

// Allow returns a passing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Reject returns a failing decision with no retry hint.
func Reject(reason RejectReason) Decision {
	return Decision{Reason: reason}
}

// RejectAfter returns a failing decision with a retry hint in seconds.
func RejectAfter(reason RejectReason, retryAfterSeconds int) Decision {
	return Decision{Reason: reason, RetryAfterSeconds: retryAfterSeconds}
}

// ValidationResult is the orchestrator's answer to a validation call.
// Exactly one of Accepted / Reason is meaningful; Suspicious marks the
// attempt for the audit trail independently of the reason text.
type ValidationResult struct {
	Accepted          bool         `json:"accepted"`
	Reason            RejectReason `json:"reason,omitempty"`
	RetryAfterSeconds int          `json:"retry_after_seconds,omitempty"`
	Suspicious        bool         `json:"-"`
	AmountCredited    int          `json:"amount_credited,omitempty"`
	EventID           uuid.UUID    `json:"event_id,omitempty"`
}

// Accepted builds the success result for an awarded event.
func AcceptedResult(event *ActionEvent) *ValidationResult {
	return &ValidationResult{
		Accepted:       true,
		AmountCredited: event.Amount,
		EventID:        event.ID,
	}
}

// RejectedResult builds a rejection from a check decision.
func RejectedResult(d Decision) *ValidationResult {
	return &ValidationResult{
		Reason:            d.Reason,
		RetryAfterSeconds: d.RetryAfterSeconds,
		Suspicious:        d.Reason == ReasonSuspiciousActivity,
	}
}

// Package audit is the security log: one entry per validation attempt,
// accepted or not, with the client metadata needed for later investigation.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "coinguard/pkg/domain"
)

// Outcome is the terminal state of a validation attempt.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// Entry is one security log record. Keep it transport-agnostic so stores
// and sinks can fan out.
type Entry struct {
	ID         uuid.UUID         `json:"id"`
	UserID     id.UserID         `json:"user_id"`
	Action     id.Action         `json:"action"`
	Outcome    Outcome           `json:"outcome"`
	Reason     string            `json:"reason,omitempty"`
	Suspicious bool              `json:"suspicious"`
	IPAddress  string            `json:"ip_address,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

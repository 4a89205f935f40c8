// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"regexp"

	"github.com/google/uuid"

	dErrors "coinguard/pkg/domain-errors"
)

// UserID identifies an authenticated storefront user. The validation core
// trusts it as already verified by the auth layer.
type UserID uuid.UUID

// ParseUserID parses a string into a UserID. Use at trust boundaries
// (handlers, API inputs).
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid user ID format")
	}
	return UserID(id), nil
}

// NewUserID generates a random UserID. Intended for tests and tooling.
func NewUserID() UserID {
	return UserID(uuid.New())
}

func (id UserID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero value.
func (id UserID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MaxActionLength bounds action identifiers to keep keys and audit rows small.
const MaxActionLength = 64

// validAction matches lowercase snake_case action identifiers, as produced
// by the admin surface that authors rules ("daily_login", "scroll_page").
var validAction = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Action names a user behavior eligible for a coin reward.
type Action string

// ParseAction validates a raw action identifier from a request.
func ParseAction(s string) (Action, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "action cannot be empty")
	}
	if len(s) > MaxActionLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "action identifier too long")
	}
	if !validAction.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "action must be lowercase snake_case")
	}
	return Action(s), nil
}

func (a Action) String() string {
	return string(a)
}

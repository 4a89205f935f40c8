package validation

import (
	"fmt"

	dErrors "coinguard/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (64 KB).
	// Sufficient for JSON APIs while preventing memory exhaustion attacks.
	MaxBodySize = 64 * 1024
)

// String element length limits
const (
	// MaxActionLength is the maximum length of an action name.
	MaxActionLength = 64

	// MaxMetadataKeys is the maximum number of client metadata entries per request.
	MaxMetadataKeys = 20

	// MaxMetadataKeyLength is the maximum length of a metadata key.
	MaxMetadataKeyLength = 64

	// MaxMetadataValueLength is the maximum length of a metadata value.
	MaxMetadataValueLength = 256
)

// CheckMapCount validates that a map does not exceed the maximum entry count.
func CheckMapCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "coinguard/pkg/domain-errors"
)

// LimitsSuite tests the validation helper functions.
//
// These are trust-boundary validators: "max must pass" and "max+1 must fail"
// are the invariants that matter.
type LimitsSuite struct {
	suite.Suite
}

func TestLimitsSuite(t *testing.T) {
	suite.Run(t, new(LimitsSuite))
}

func (s *LimitsSuite) TestCheckStringLength() {
	s.Run("value at max passes", func() {
		s.NoError(CheckStringLength("action", strings.Repeat("a", MaxActionLength), MaxActionLength))
	})

	s.Run("value over max fails with validation code", func() {
		err := CheckStringLength("action", strings.Repeat("a", MaxActionLength+1), MaxActionLength)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "action")
	})

	s.Run("empty value passes", func() {
		s.NoError(CheckStringLength("action", "", MaxActionLength))
	})
}

func (s *LimitsSuite) TestCheckMapCount() {
	s.Run("count at max passes", func() {
		s.NoError(CheckMapCount("metadata entries", MaxMetadataKeys, MaxMetadataKeys))
	})

	s.Run("count over max fails", func() {
		err := CheckMapCount("metadata entries", MaxMetadataKeys+1, MaxMetadataKeys)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

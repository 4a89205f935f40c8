package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coinguard/pkg/domain-errors"
)

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
	assert.False(t, id.IsNil())
}

func TestParseUserID_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not-a-uuid", "550e8400"} {
		_, err := ParseUserID(raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "input %q", raw)
	}
}

func TestParseAction(t *testing.T) {
	valid := []string{"daily_login", "scroll_page", "view_product", "a", "share_2"}
	for _, raw := range valid {
		a, err := ParseAction(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, raw, a.String())
	}
}

func TestParseAction_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"Daily_Login",
		"2fast",
		"has space",
		"semi;colon",
		strings.Repeat("a", MaxActionLength+1),
	}
	for _, raw := range invalid {
		_, err := ParseAction(raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "input %q", raw)
	}
}

package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coinguard/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("admin-key")
	require.NoError(t, err)
	assert.NotEqual(t, "admin-key", hash)

	assert.NoError(t, Verify("admin-key", hash))

	err = Verify("wrong-key", hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHashRejectsBadInput(t *testing.T) {
	_, err := Hash("")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	// bcrypt refuses inputs longer than 72 bytes.
	_, err = Hash(strings.Repeat("x", 100))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

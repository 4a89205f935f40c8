package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "rule missing")
	require.Error(t, err)
	assert.Equal(t, "rule missing", err.Error())
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeInternal))
}

func TestError_MessageFallsBackToCode(t *testing.T) {
	err := &Error{Code: CodeTimeout}
	assert.Equal(t, "timeout", err.Error())
}

func TestWrap_PreservesOriginalCode(t *testing.T) {
	inner := New(CodeConflict, "duplicate event")
	outer := Wrap(inner, CodeInternal, "award failed")

	assert.True(t, HasCode(outer, CodeConflict), "wrapping must not clobber the original code")
	assert.Equal(t, "award failed", outer.Error())
	assert.True(t, errors.Is(outer, &Error{Code: CodeConflict}))
}

func TestWrap_PlainError(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	outer := Wrap(inner, CodeUnavailable, "event store unreachable")

	assert.True(t, HasCode(outer, CodeUnavailable))
	assert.ErrorIs(t, outer, inner)
}

func TestHasCode_NonDomainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestIsInfrastructure(t *testing.T) {
	cases := []struct {
		code Code
		want bool
	}{
		{CodeInternal, true},
		{CodeTimeout, true},
		{CodeUnavailable, true},
		{CodeNotFound, false},
		{CodeConflict, false},
		{CodeBadRequest, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, IsInfrastructure(New(tc.code, "x")))
		})
	}
}

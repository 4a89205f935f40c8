package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "coinguard/pkg/domain"
	dErrors "coinguard/pkg/domain-errors"
	"coinguard/pkg/requestcontext"
)

const testSigningKey = "test-signing-key-at-least-32-bytes!"

func newTestService() *JWTService {
	return NewJWTService(testSigningKey, "coinguard", "coinguard-api", time.Hour)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()
	userID := id.NewUserID()

	tokenString, err := svc.GenerateAccessToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "coinguard", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "JTI should be set")
}

func TestGenerateAccessToken_NilUserID(t *testing.T) {
	svc := newTestService()

	_, err := svc.GenerateAccessToken(context.Background(), id.UserID{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestGenerateAccessToken_UsesRequestTime(t *testing.T) {
	svc := newTestService()
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), issuedAt)

	tokenString, err := svc.GenerateAccessToken(ctx, id.NewUserID())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issuedAt.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	ctx := requestcontext.WithTime(context.Background(), time.Now().Add(-2*time.Hour))

	tokenString, err := svc.GenerateAccessToken(ctx, id.NewUserID())
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateToken_WrongKey(t *testing.T) {
	svc := newTestService()
	other := NewJWTService("a-completely-different-signing-key!!", "coinguard", "coinguard-api", time.Hour)

	tokenString, err := other.GenerateAccessToken(context.Background(), id.NewUserID())
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	svc := newTestService()
	other := NewJWTService(testSigningKey, "someone-else", "coinguard-api", time.Hour)

	tokenString, err := other.GenerateAccessToken(context.Background(), id.NewUserID())
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issuer")
}

func TestValidateToken_RejectsAlgorithmConfusion(t *testing.T) {
	svc := newTestService()

	// A token signed with "none" must never validate, even with a correct payload.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{
		UserID: id.NewUserID().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "coinguard",
		},
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestMiddlewareValidator(t *testing.T) {
	svc := newTestService()
	userID := id.NewUserID()

	tokenString, err := svc.GenerateAccessToken(context.Background(), userID)
	require.NoError(t, err)

	validator := NewMiddlewareValidator(svc)
	claims, err := validator.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.NotEmpty(t, claims.JTI)

	_, err = validator.ValidateToken("garbage")
	assert.Error(t, err)
}

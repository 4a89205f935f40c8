// Package token issues and validates the HS256 access tokens the reward API
// authenticates with.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	id "coinguard/pkg/domain"
	dErrors "coinguard/pkg/domain-errors"
	"coinguard/pkg/platform/middleware/auth"
	"coinguard/pkg/requestcontext"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims represents the JWT claims for our access tokens
type AccessTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey, issuer, audience string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// GenerateAccessToken signs a token for the given user. The JTI is random so
// individual tokens can be told apart in the security log.
func (s *JWTService) GenerateAccessToken(ctx context.Context, userID id.UserID) (string, error) {
	if userID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id cannot be nil")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	jti := hex.EncodeToString(b)
	now := requestcontext.Now(ctx)

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	return newToken.SignedString(s.signingKey)
}

// ValidateToken verifies the signature and standard claims of an access token.
// The signing algorithm is pinned to HS256 so a crafted token cannot switch
// the verification to a different scheme.
func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	if claims.Issuer != s.issuer {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token issuer")
	}

	return claims, nil
}

// MiddlewareValidator adapts JWTService to the auth middleware contract.
type MiddlewareValidator struct {
	svc *JWTService
}

func NewMiddlewareValidator(svc *JWTService) *MiddlewareValidator {
	return &MiddlewareValidator{svc: svc}
}

func (v *MiddlewareValidator) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := v.svc.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.JWTClaims{
		UserID: claims.UserID,
		JTI:    claims.ID,
	}, nil
}

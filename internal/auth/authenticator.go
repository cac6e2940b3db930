// Package auth guards the bridge surface (SPEC_FULL.md §11) with a
// stateless bearer JWT. There is no tenant or permission model — a valid,
// unexpired token signed by the configured secret is the whole
// authorization decision, matching this service's read-only, single-table
// scope.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator validates bearer tokens presented to the bridge.
type Authenticator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// Claims is the token payload. Subject identifies the caller for logging;
// it carries no authorization weight of its own.
type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// JWTAuthenticator implements Authenticator using HMAC-signed JWTs.
type JWTAuthenticator struct {
	secretKey []byte
	issuer    string
}

// NewJWTAuthenticator returns a JWTAuthenticator that only accepts tokens
// signed with secretKey and carrying issuer.
func NewJWTAuthenticator(secretKey []byte, issuer string) *JWTAuthenticator {
	return &JWTAuthenticator{secretKey: secretKey, issuer: issuer}
}

// ValidateToken parses and verifies tokenString, rejecting expired tokens,
// wrong signing methods, and a mismatched issuer.
func (ja *JWTAuthenticator) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ja.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}
	if claims.Issuer != ja.issuer {
		return nil, fmt.Errorf("invalid issuer")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, fmt.Errorf("token expired")
	}
	return claims, nil
}

// AuthMiddleware adapts an Authenticator to the bridge's transport-agnostic
// "Authorization: Bearer <token>" header convention.
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware wraps authenticator for header extraction.
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// ExtractAndValidateToken strips an optional "Bearer " prefix from header
// and validates what remains.
func (am *AuthMiddleware) ExtractAndValidateToken(ctx context.Context, header string) (*Claims, error) {
	if header == "" {
		return nil, fmt.Errorf("missing authentication token")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return am.authenticator.ValidateToken(ctx, token)
}

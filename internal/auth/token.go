package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager mints bearer tokens for the bridge's own clients (used by
// cmd/logreader's "serve" command to hand out a dev token on startup).
type TokenManager struct {
	secretKey  []byte
	issuer     string
	defaultTTL time.Duration
}

// NewTokenManager returns a TokenManager signing with secretKey.
func NewTokenManager(secretKey []byte, issuer string, defaultTTL time.Duration) *TokenManager {
	return &TokenManager{secretKey: secretKey, issuer: issuer, defaultTTL: defaultTTL}
}

// GenerateJWT mints a token identifying subject, valid for defaultTTL.
func (tm *TokenManager) GenerateJWT(subject string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.defaultTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

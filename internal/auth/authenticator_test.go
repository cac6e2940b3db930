package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthenticator_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	tm := NewTokenManager(secret, "tablelog", time.Hour)
	token, err := tm.GenerateJWT("reader-1")
	require.NoError(t, err)

	ja := NewJWTAuthenticator(secret, "tablelog")
	claims, err := ja.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "reader-1", claims.Subject)
}

func TestJWTAuthenticator_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager([]byte("secret-a"), "tablelog", time.Hour)
	token, err := tm.GenerateJWT("reader-1")
	require.NoError(t, err)

	ja := NewJWTAuthenticator([]byte("secret-b"), "tablelog")
	_, err = ja.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTAuthenticator_RejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	tm := NewTokenManager(secret, "tablelog", -time.Hour)
	token, err := tm.GenerateJWT("reader-1")
	require.NoError(t, err)

	ja := NewJWTAuthenticator(secret, "tablelog")
	_, err = ja.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTAuthenticator_RejectsWrongIssuer(t *testing.T) {
	secret := []byte("test-secret")
	tm := NewTokenManager(secret, "other-issuer", time.Hour)
	token, err := tm.GenerateJWT("reader-1")
	require.NoError(t, err)

	ja := NewJWTAuthenticator(secret, "tablelog")
	_, err = ja.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestAuthMiddleware_ExtractAndValidateToken(t *testing.T) {
	secret := []byte("test-secret")
	tm := NewTokenManager(secret, "tablelog", time.Hour)
	token, err := tm.GenerateJWT("reader-1")
	require.NoError(t, err)

	mw := NewAuthMiddleware(NewJWTAuthenticator(secret, "tablelog"))

	claims, err := mw.ExtractAndValidateToken(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "reader-1", claims.Subject)

	_, err = mw.ExtractAndValidateToken(context.Background(), "")
	assert.Error(t, err)
}

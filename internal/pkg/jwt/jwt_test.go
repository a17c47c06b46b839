package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", "ops@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.InDelta(t, time.Now().Add(15*time.Minute).Unix(), expiresAt, 5)

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	userID, ok := token.Get("user_id")
	require.True(t, ok)
	assert.Equal(t, "user-1", userID)

	tokenType, ok := token.Get("type")
	require.True(t, ok)
	assert.Equal(t, "access", tokenType)
}

func TestGenerateAccessToken_InvalidDuration(t *testing.T) {
	svc := NewJWTService("test-secret", "fifteen minutes")

	_, _, err := svc.GenerateAccessToken("user-1", "ops@example.com")
	assert.Error(t, err)
}

func TestDecode_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", "15m")
	verifier := NewJWTService("secret-b", "15m")

	tokenString, _, err := issuer.GenerateAccessToken("user-1", "ops@example.com")
	require.NoError(t, err)

	_, err = verifier.JWTAuth().Decode(tokenString)
	assert.Error(t, err)
}

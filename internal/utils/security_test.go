package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "certagent")

	token, err := tm.GenerateToken("operator", "admin", "api:access")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "api:access", claims.Scope)
	assert.Equal(t, "certagent", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "certagent")
	token, err := tm.GenerateToken("operator", "admin", "api:access")
	require.NoError(t, err)

	other := NewTokenManager("different-secret", time.Hour, "certagent")
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "other-service")
	token, err := tm.GenerateToken("operator", "admin", "api:access")
	require.NoError(t, err)

	validator := NewTokenManager("test-secret", time.Hour, "certagent")
	_, err = validator.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, "certagent")
	token, err := tm.GenerateToken("operator", "admin", "api:access")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "certagent")
	_, err := tm.ValidateToken("not-a-token")
	require.Error(t, err)
}

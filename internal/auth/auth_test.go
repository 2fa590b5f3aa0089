package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	keys, err := NewKeys("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := keys.GenerateToken("42", "alice", RoleEmployee)
	require.NoError(t, err)

	claims, err := keys.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, RoleEmployee, claims.Role)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	keys, err := NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewKeys("other-secret", time.Hour)
	require.NoError(t, err)

	token, err := keys.GenerateToken("42", "alice", RoleEmployee)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	keys, err := NewKeys("test-secret", time.Nanosecond)
	require.NoError(t, err)

	token, err := keys.GenerateToken("42", "alice", RoleEmployee)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = keys.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewKeysRequiresSecret(t *testing.T) {
	_, err := NewKeys("", time.Hour)
	assert.Error(t, err)
}

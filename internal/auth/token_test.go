package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/helpdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("unit-secret", 30)

	token, expiresAt, err := manager.GenerateToken("user-1", domain.RoleAgent)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 30).GenerateToken("user-1", domain.RoleCustomer)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 30).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	_, err := NewTokenManager("secret", 30).ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestGenerateSecureToken(t *testing.T) {
	first, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	fallback, err := GenerateSecureToken(0)
	require.NoError(t, err)
	assert.Len(t, fallback, 64)
}

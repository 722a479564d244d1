package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", 60)

	token, err := m.GenerateAccessToken("user-1", "user@example.com", true)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.Type)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", 60)

	token, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "refresh", claims.Type)
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	m := NewManager("secret", 60)

	access, err := m.GenerateAccessToken("user-1", "user@example.com", false)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	// A refresh token must not pass as an access token and vice versa.
	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := NewManager("secret-a", 60).GenerateAccessToken("user-1", "user@example.com", false)
	require.NoError(t, err)

	_, err = NewManager("secret-b", 60).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("secret", 0)

	token, err := m.GenerateAccessToken("user-1", "user@example.com", false)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessExpiry(t *testing.T) {
	m := NewManager("secret", 45)
	assert.Equal(t, 45*time.Minute, m.AccessExpiry())
}

package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, aexp, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	assert.True(t, aexp.After(time.Now()))

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err, "access token must not validate with the refresh secret")
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	refresh, _, err := m.GenerateRefreshToken("u1", "s1")
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(refresh)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPasswordCost("123456", 4)
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "123456"))
	assert.False(t, CompareHashAndPassword(hash, "654321"))
	assert.False(t, CompareHashAndPassword("", "123456"))

	// out-of-range costs fall back to the default
	_, err = HashPasswordCost("123456", 99)
	require.NoError(t, err)
}

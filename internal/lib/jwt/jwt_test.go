package jwt_test

import (
	"testing"
	"time"

	"whisperbox/internal/lib/jwt"
	"whisperbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func testUser() models.User {
	return models.User{
		ID:          42,
		Email:       "a@x.com",
		Username:    "alice",
		IsVerified:  true,
		IsAccepting: true,
	}
}

func TestTokenRoundtrip(t *testing.T) {
	token, err := jwt.NewToken(testUser(), time.Hour, secret)
	require.NoError(t, err)

	claims, err := jwt.ParseToken(token, secret)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsVerified)
	assert.True(t, claims.IsAccepting)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := jwt.NewToken(testUser(), time.Hour, secret)
	require.NoError(t, err)

	_, err = jwt.ParseToken(token, "other-secret")
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := jwt.NewToken(testUser(), -time.Minute, secret)
	require.NoError(t, err)

	_, err = jwt.ParseToken(token, secret)
	require.Error(t, err)
}

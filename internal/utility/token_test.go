package utility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devwander/localiza-tech-api/internal/common"
)

func TestCreateAndVerifyToken(t *testing.T) {
	secret := "test-secret"
	userID := "64f1a2b3c4d5e6f7a8b9c0d1"

	token, err := CreateToken(secret, userID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.NotEmpty(t, claims.RandomNumber)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := CreateToken("secret-a", "user1", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken("secret-b", token)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := CreateToken("secret", "user1", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken("secret", token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken("secret", "không phải jwt")
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestTokensAreUnique(t *testing.T) {
	t1, err := CreateToken("secret", "user1", time.Hour)
	require.NoError(t, err)
	t2, err := CreateToken("secret", "user1", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

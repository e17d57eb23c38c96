package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devwander/localiza-tech-api/internal/common"
)

func TestHashAndComparePassword(t *testing.T) {
	hashed, err := HashPassword("MậtKhẩu@123")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	assert.NotEqual(t, "MậtKhẩu@123", hashed)

	assert.NoError(t, ComparePassword(hashed, "MậtKhẩu@123"))
	assert.ErrorIs(t, ComparePassword(hashed, "sai-mật-khẩu"), common.ErrInvalidCredentials)
}

func TestHashPasswordSaltedPerCall(t *testing.T) {
	h1, err := HashPassword("abc123!@#")
	require.NoError(t, err)
	h2, err := HashPassword("abc123!@#")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

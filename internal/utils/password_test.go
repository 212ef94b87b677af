package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("open sesame", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "open sesame", hash)

	assert.True(t, VerifyPassword(hash, "open sesame"))
	assert.False(t, VerifyPassword(hash, "open sesam"))
	assert.False(t, VerifyPassword("not a hash", "open sesame"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	// Out-of-range costs fall back to the bcrypt default instead of
	// erroring at registration time.
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

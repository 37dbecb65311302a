package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!pw")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Str0ng!pw", hash)

	assert.True(t, CheckPassword(hash, "Str0ng!pw"))
	assert.False(t, CheckPassword(hash, "Wr0ng!pass"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("Str0ng!pw")
	require.NoError(t, err)
	second, err := HashPassword("Str0ng!pw")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

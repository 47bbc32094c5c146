package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUsername(t *testing.T) {
	got, err := NormalizeUsername("  alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	for _, bad := range []string{"", "ab", "   ", "two words", strings.Repeat("x", 65)} {
		_, err := NormalizeUsername(bad)
		assert.ErrorIs(t, err, ErrInvalidUsername, "%q", bad)
	}
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleManager))
	assert.True(t, IsValidRole(RoleCareWorker))
	assert.False(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole(""))
}

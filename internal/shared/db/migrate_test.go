package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])

	body, err := MigrationsFS.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)
	sql := string(body)
	assert.Contains(t, sql, "shifts_one_open_per_user")
	assert.NotContains(t, strings.ToUpper(sql), "BEGIN;")
}

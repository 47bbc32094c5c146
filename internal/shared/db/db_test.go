package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack/internal/shared/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.Defaults().Database
	cfg.MaxConns = 7
	cfg.MinConns = 3
	cfg.ConnectTimeoutSecs = 2

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, 2*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, "UTC", pc.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, cfg.Database, pc.ConnConfig.Database)
}

func TestPoolConfigIgnoresMinAboveMax(t *testing.T) {
	cfg := config.Defaults().Database
	cfg.MaxConns = 2
	cfg.MinConns = 5
	cfg.ConnectTimeoutSecs = 0

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pc.MaxConns)
	assert.LessOrEqual(t, pc.MinConns, pc.MaxConns)
	assert.Equal(t, defaultConnectTimeout, pc.ConnConfig.ConnectTimeout)
}

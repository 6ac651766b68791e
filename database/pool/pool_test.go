package pool

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 25, config.MaxOpenConns)
	assert.Equal(t, 5, config.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, config.ConnMaxLifetime)
	assert.Equal(t, time.Minute, config.HealthCheckInterval)
}

func TestPool(t *testing.T) {
	ctx := context.Background()
	config := Config{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	p, err := Open(ctx, "sqlite3", "file::memory:", config)
	require.NoError(t, err)

	t.Run("stats", func(t *testing.T) {
		stats := p.Stats()
		assert.Equal(t, 1, stats.MaxOpenConnections)
		assert.True(t, stats.LastHealthCheck.IsZero())
	})

	t.Run("health check", func(t *testing.T) {
		require.NoError(t, p.HealthCheck(ctx))

		stats := p.Stats()
		assert.False(t, stats.LastHealthCheck.IsZero())
		assert.Zero(t, stats.FailedHealthChecks)
		assert.NoError(t, stats.LastError)
	})

	t.Run("close", func(t *testing.T) {
		require.NoError(t, p.Close())
		assert.Error(t, p.HealthCheck(ctx))
		assert.Equal(t, int64(1), p.Stats().FailedHealthChecks)
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "nope", "", DefaultConfig())
	assert.Error(t, err)
}

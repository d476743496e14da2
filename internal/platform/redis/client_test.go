package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credwallet/internal/platform/config"
)

func TestNewWithoutURLKeepsRecordsInMemory(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "http://not-redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestOptions(t *testing.T) {
	t.Run("applies configured pool and timeouts", func(t *testing.T) {
		cfg := config.DefaultRedisConfig()
		cfg.URL = "redis://localhost:6379/2"
		cfg.PoolSize = 7
		cfg.ReadTimeout = 750 * time.Millisecond

		opts, err := Options(cfg)
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 7, opts.PoolSize)
		assert.Equal(t, 750*time.Millisecond, opts.ReadTimeout)
		assert.Equal(t, cfg.DialTimeout, opts.DialTimeout)
	})

	t.Run("zero values keep go-redis defaults", func(t *testing.T) {
		opts, err := Options(config.RedisConfig{URL: "redis://localhost:6379"})
		require.NoError(t, err)
		assert.Zero(t, opts.MinIdleConns)
		assert.Zero(t, opts.PoolSize)
	})
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, ":9090", cfg.App.GRPCAddr)
	assert.Equal(t, 100*time.Millisecond, cfg.App.RateLimit)
	assert.Equal(t, 4, cfg.Engine.DispatchWorkers)
	assert.Equal(t, 10, cfg.Engine.DefaultDepth)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.True(t, cfg.Development())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENVIRONMENT", "production")
	t.Setenv("ENGINE_DISPATCH_WORKERS", "8")
	t.Setenv("ENGINE_RETRY_BACKOFF", "250ms")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@db:5432/exchange")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Development())
	assert.Equal(t, 8, cfg.Engine.DispatchWorkers)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.RetryBackoff)
	assert.Equal(t, "postgres://u:p@db:5432/exchange", cfg.Postgres.DSN)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "market-events", cfg.Kafka.Topic)
}

func TestLoad_RejectsInvalidEngineSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENGINE_DISPATCH_WORKERS", "0")

	_, err := Load()
	assert.Error(t, err)
}

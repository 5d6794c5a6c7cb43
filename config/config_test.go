package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "openpaymentdata", cfg.Database.Name)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Query.Timeout)
	assert.Equal(t, 0, cfg.Query.MaxLimit)
	assert.True(t, cfg.Query.DiscoverColumns)
	assert.Zero(t, cfg.Query.RefreshInterval)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("COUNT_CACHE_TTL", "5m")
	t.Setenv("QUERY_MAX_LIMIT", "500")
	t.Setenv("DATASETS_FILE", "/etc/openpayments/datasets.yaml")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CountTTL)
	assert.Equal(t, 500, cfg.Query.MaxLimit)
	assert.Equal(t, "/etc/openpayments/datasets.yaml", cfg.Query.DatasetsFile)
}

func TestLoadConfig_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("QUERY_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 15*time.Second, cfg.Query.Timeout)
}

func TestLoadConfig_RejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "qa")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RejectsNegativeMaxLimit(t *testing.T) {
	t.Setenv("QUERY_MAX_LIMIT", "-1")

	_, err := LoadConfig()
	assert.Error(t, err)
}

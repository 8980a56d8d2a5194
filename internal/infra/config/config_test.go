package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("RETRY_BACKOFF", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, int64(150000), cfg.TariffWeekday)
	assert.Equal(t, int64(180000), cfg.TariffWeekend)
	assert.Equal(t, int64(200000), cfg.TariffHoliday)
	assert.Equal(t, 90, cfg.MaxStayNights)
	assert.Equal(t, 366, cfg.MaxWindowNights)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/cabins")
	t.Setenv("TARIFF_HOLIDAY", "250000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("S3_USE_SSL", "yes")
	t.Setenv("MAX_STAY_NIGHTS", "14")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, int64(250000), cfg.TariffHoliday)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, 14, cfg.MaxStayNights)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "mongo without uri", env: map[string]string{"STORAGE_DRIVER": "mongo", "MONGO_URI": ""}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "bad tariff", env: map[string]string{"TARIFF_WEEKDAY": "cheap"}},
		{name: "negative tariff", env: map[string]string{"TARIFF_WEEKEND": "-1"}},
		{name: "bad duration", env: map[string]string{"JWT_TTL": "forever"}},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}},
		{name: "zero stay limit", env: map[string]string{"MAX_STAY_NIGHTS": "0"}},
		{name: "stay longer than window", env: map[string]string{"MAX_STAY_NIGHTS": "400", "MAX_WINDOW_NIGHTS": "366"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CABINS_DOTENV_VALUE=from-file\n"), 0o600))
	t.Setenv("CABINS_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("CABINS_DOTENV_VALUE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CABINS_DOTENV_VALUE"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

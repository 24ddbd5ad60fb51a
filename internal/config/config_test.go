package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })

	return tmpDir
}

func TestLoad(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "bike-dashboard", cfg.App.Name)
		assert.Equal(t, 8080, cfg.App.Port)
		assert.Equal(t, "./data/data_day.csv", cfg.Dataset.DailyPath)
		assert.Equal(t, "./data/data_hour.csv", cfg.Dataset.HourlyPath)
		assert.Equal(t, 5, cfg.Dashboard.PreviewRows)
		assert.Equal(t, 10*time.Minute, cfg.Dashboard.CacheTTL)
		assert.Equal(t, "svg", cfg.Dashboard.ChartFormat)
		assert.Equal(t, 800, cfg.Dashboard.ChartWidth)
		assert.False(t, cfg.Redis.Enabled)
		assert.False(t, cfg.ExportsEnabled())
		assert.Equal(t, "/api/v1", cfg.API.BasePath)
	})

	t.Run("load from file", func(t *testing.T) {
		dir := chdirTemp(t)

		content := `
app:
  name: "bike-dashboard-test"
  env: "test"
  log_level: "debug"
  port: 9090

dataset:
  daily_path: "/srv/data/day.csv"
  hourly_path: "/srv/data/hour.csv"
  reload_interval: "1h"

dashboard:
  preview_rows: 10
  cache_ttl: "2m"

postgres:
  enabled: true
  host: "db"

minio:
  enabled: true
  endpoint: "storage:9000"
  bucket: "exports"
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "bike-dashboard-test", cfg.App.Name)
		assert.Equal(t, "debug", cfg.App.LogLevel)
		assert.Equal(t, 9090, cfg.App.Port)
		assert.Equal(t, "/srv/data/day.csv", cfg.Dataset.DailyPath)
		assert.Equal(t, time.Hour, cfg.Dataset.ReloadInterval)
		assert.Equal(t, 10, cfg.Dashboard.PreviewRows)
		assert.Equal(t, 2*time.Minute, cfg.Dashboard.CacheTTL)
		assert.True(t, cfg.ExportsEnabled())
		assert.Equal(t, "exports", cfg.Minio.Bucket)
	})

	t.Run("environment overrides", func(t *testing.T) {
		chdirTemp(t)

		t.Setenv("DATASET_DAILY_PATH", "/tmp/day.csv")
		t.Setenv("REDIS_HOST", "cache.local")
		t.Setenv("LOG_LEVEL", "warn")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/tmp/day.csv", cfg.Dataset.DailyPath)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "cache.local", cfg.Redis.Host)
		assert.Equal(t, "warn", cfg.App.LogLevel)
	})

	t.Run("invalid file content", func(t *testing.T) {
		dir := chdirTemp(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app: [unclosed"), 0644))

		_, err := Load()
		assert.Error(t, err)
	})
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return &cfg
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "empty daily path",
			mutate:  func(cfg *Config) { cfg.Dataset.DailyPath = "" },
			wantErr: "daily dataset path",
		},
		{
			name:    "empty hourly path",
			mutate:  func(cfg *Config) { cfg.Dataset.HourlyPath = "" },
			wantErr: "hourly dataset path",
		},
		{
			name:    "zero preview rows",
			mutate:  func(cfg *Config) { cfg.Dashboard.PreviewRows = 0 },
			wantErr: "preview rows",
		},
		{
			name:    "unknown chart format",
			mutate:  func(cfg *Config) { cfg.Dashboard.ChartFormat = "gif" },
			wantErr: "chart format",
		},
		{
			name: "enabled redis without host",
			mutate: func(cfg *Config) {
				cfg.Redis.Enabled = true
				cfg.Redis.Host = ""
			},
			wantErr: "Redis host",
		},
		{
			name: "enabled kafka without topic",
			mutate: func(cfg *Config) {
				cfg.Kafka.Enabled = true
				cfg.Kafka.EventsTopic = ""
			},
			wantErr: "Kafka topics",
		},
		{
			name: "exports without retention",
			mutate: func(cfg *Config) {
				cfg.Postgres.Enabled = true
				cfg.Minio.Enabled = true
				cfg.Exports.RetentionDays = 0
			},
			wantErr: "export retention",
		},
		{
			name:    "bad port",
			mutate:  func(cfg *Config) { cfg.App.Port = 70000 },
			wantErr: "app port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

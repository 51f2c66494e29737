package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_ENV", "APP_TIMEZONE", "APP_DEBUG", "APP_NAME", "APP_VERSION", "SHUTDOWN_TIMEOUT",
	"ROSTER_DEFAULT_PATH", "ROSTER_BASE_DIR", "ROSTER_SEED", "ROSTER_HISTORY_PAGE_SIZE",
	"DATABASE_URL", "DATABASE_ENABLED", "DB_MAX_CONNS", "DB_CONN_MAX_LIFETIME", "DB_QUERY_TIMEOUT", "DB_CONNECT_ATTEMPTS",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT", "REDIS_DISABLED", "REDIS_CONNECT_ATTEMPTS",
	"EXPORT_DIR", "LOG_LEVEL", "LOG_FORMAT",
}

// cleanEnv blanks every variable Load reads.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, time.Local, cfg.App.Location)
	assert.Equal(t, 5*time.Second, cfg.App.ShutdownTimeout)

	assert.Equal(t, "roster.csv", cfg.Roster.DefaultPath)
	assert.Zero(t, cfg.Roster.Seed)
	assert.Equal(t, 20, cfg.Roster.HistoryPageSize)

	assert.False(t, cfg.Database.Enabled)
	assert.True(t, cfg.Redis.Disabled)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
	assert.Equal(t, "text", cfg.Observability.LogFormat)
}

func TestLoad_FromEnv(t *testing.T) {
	cleanEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("ROSTER_SEED", "42")
	t.Setenv("ROSTER_DEFAULT_PATH", "class.csv")
	t.Setenv("DATABASE_URL", "postgres://rollcall@localhost/rollcall")
	t.Setenv("DB_QUERY_TIMEOUT", "750ms")
	t.Setenv("REDIS_DISABLED", "false")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.Equal(t, uint64(42), cfg.Roster.Seed)
	assert.Equal(t, "class.csv", cfg.Roster.DefaultPath)
	assert.True(t, cfg.Database.Enabled, "a URL enables the archive")
	assert.Equal(t, 750*time.Millisecond, cfg.Database.QueryTimeout)
	assert.False(t, cfg.Redis.Disabled)
	assert.Equal(t, 6380, cfg.Redis.Port)
}

func TestLoad_DatabaseExplicitlyDisabled(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DATABASE_URL", "postgres://rollcall@localhost/rollcall")
	t.Setenv("DATABASE_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	cleanEnv(t)
	t.Setenv("ROSTER_SEED", "-1")
	t.Setenv("ROSTER_HISTORY_PAGE_SIZE", "lots")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("APP_DEBUG", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Roster.Seed)
	assert.Equal(t, 20, cfg.Roster.HistoryPageSize)
	assert.Equal(t, 5*time.Second, cfg.App.ShutdownTimeout)
	assert.False(t, cfg.App.Debug)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown env", map[string]string{"APP_ENV": "qa"}, "APP_ENV"},
		{"unknown timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}, "APP_TIMEZONE"},
		{"zero shutdown", map[string]string{"SHUTDOWN_TIMEOUT": "0s"}, "SHUTDOWN_TIMEOUT"},
		{"negative page size", map[string]string{"ROSTER_HISTORY_PAGE_SIZE": "-5"}, "ROSTER_HISTORY_PAGE_SIZE"},
		{"database without url", map[string]string{"DATABASE_ENABLED": "true"}, "DATABASE_URL"},
		{"redis port", map[string]string{"REDIS_DISABLED": "false", "REDIS_PORT": "70000"}, "REDIS_PORT"},
		{"log level", map[string]string{"LOG_LEVEL": "trace"}, "LOG_LEVEL"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cleanEnv(t)
	t.Setenv("APP_ENV", "qa")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ENV")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

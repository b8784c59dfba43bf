package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDatabaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "clients_db")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setDatabaseEnv(t)

	cfg := Load()

	assert.Equal(t, "client-service", cfg.Service.Name)
	assert.Equal(t, "8080", cfg.Service.Port)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.True(t, cfg.Directory.UniquePhones)
	assert.True(t, cfg.Directory.EnsureSchema)
	assert.False(t, cfg.Auth.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeoutDuration())
	assert.Equal(t, 5*time.Second, cfg.GetReadinessDrainDelayDuration())
	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	setDatabaseEnv(t)
	t.Setenv("DIRECTORY_UNIQUE_PHONES", "false")
	t.Setenv("SHUTDOWN_TIMEOUT", "20s")
	t.Setenv("READINESS_DRAIN_DELAY", "2m")
	t.Setenv("DB_POOL_MAX_CONNECTIONS", "4")
	t.Setenv("LOG_FORMAT", "console")

	cfg := Load()

	assert.False(t, cfg.Directory.UniquePhones)
	assert.Equal(t, 20, cfg.ShutdownTimeout)
	// Above the 30s cap: falls back to the default.
	assert.Equal(t, 5, cfg.ReadinessDrainDelay)
	assert.Equal(t, 4, cfg.Database.MaxConnections)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.Service.Port = "http"
	cfg.Logging.Level = "trace"
	cfg.Database = DatabaseConfig{Port: "x"}
	cfg.Auth = AuthConfig{Enabled: true}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"PORT must be a valid number",
		"LOG_LEVEL must be one of",
		"DB_HOST is required",
		"DB_NAME is required",
		"DB_USER is required",
		"DB_PORT must be a valid number",
		"DB_POOL_MAX_CONNECTIONS must be positive",
		"AUTH_SERVICE_URL is required",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestBuildDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5433", Name: "clients_db", User: "u", Password: "p",
		SSLMode: "require", MaxConnections: 3,
	}
	assert.Equal(t, "postgresql://u:p@db:5433/clients_db?sslmode=require&pool_max_conns=3", c.BuildDSN())
}

func TestBuildDSN_EscapesCredentials(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", Name: "clients_db", User: "app", Password: "p@ss:w/rd",
		SSLMode: "disable", MaxConnections: 10,
	}
	assert.Equal(t, "postgresql://app:p%40ss%3Aw%2Frd@db:5432/clients_db?sslmode=disable&pool_max_conns=10", c.BuildDSN())
}

func TestGetEnvBool(t *testing.T) {
	for value, want := range map[string]bool{"true": true, "YES": true, "1": true, "false": false, "off": false} {
		t.Setenv("CLIENT_SERVICE_FLAG", value)
		assert.Equal(t, want, getEnvBool("CLIENT_SERVICE_FLAG", !want), value)
	}
}

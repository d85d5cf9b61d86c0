package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points Load at files that do not exist so the developer's own
// .env cannot leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ATTENDAI_DOTENV", filepath.Join(dir, "missing.env"))
	t.Setenv("ATTENDAI_CONFIG", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "sqlserver", cfg.DBDriver)
	assert.Equal(t, 5000, cfg.MaxRows)
	assert.Equal(t, "2024-07-01 to 2024-07-31", cfg.FallbackDates)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, 86400, cfg.SessionTTL)
	assert.Equal(t, "Employee Name", cfg.ColumnAliases["Empname"])
	assert.Equal(t, DefaultAnthropicModel, cfg.ModelName())

	// defaults are copied, not shared
	cfg.ColumnAliases["Empname"] = "Name"
	assert.Equal(t, "Employee Name", DefaultColumnAliases["Empname"])
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ATTENDAI_PORT", "9090")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "hr")
	t.Setenv("MAX_ROWS", "100")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_TTL", "60")
	t.Setenv("ENABLE_AUTH", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 100, cfg.MaxRows)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 60, cfg.SessionTTL)
	assert.False(t, cfg.EnableAuth)
	assert.Equal(t, DefaultGeminiModel, cfg.ModelName())
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotenvAndJSON(t *testing.T) {
	dir := isolate(t)

	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("DB_HOST=from-dotenv\nDB_NAME=attendance\n"), 0o600))
	t.Setenv("ATTENDAI_DOTENV", dotenv)
	t.Cleanup(func() {
		os.Unsetenv("DB_HOST")
		os.Unsetenv("DB_NAME")
	})

	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"port": 7000, "fallback_dates": "2024-01-01 to 2024-01-31", "column_aliases": {"Departname": "Department"}}`), 0o600))
	t.Setenv("ATTENDAI_CONFIG", file)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.DBHost)
	assert.Equal(t, "attendance", cfg.DBName)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "2024-01-01 to 2024-01-31", cfg.FallbackDates)
	assert.Equal(t, "Department", cfg.ColumnAliases["Departname"])
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBDriver:        "sqlserver",
			DBHost:          "localhost",
			DBName:          "hr",
			LLMProvider:     "anthropic",
			AnthropicAPIKey: "key",
			SessionBackend:  "memory",
		}
	}
	assert.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"driver", func(c *Config) { c.DBDriver = "sqlite" }, "unsupported db_driver"},
		{"database", func(c *Config) { c.DBHost = "" }, "database not configured"},
		{"anthropic key", func(c *Config) { c.AnthropicAPIKey = "" }, "ANTHROPIC_API_KEY"},
		{"gemini key", func(c *Config) { c.LLMProvider = "gemini" }, "GEMINI_API_KEY"},
		{"provider", func(c *Config) { c.LLMProvider = "openai" }, "unsupported llm_provider"},
		{"session", func(c *Config) { c.SessionBackend = "disk" }, "unsupported session_backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	c := base()
	c.DBHost, c.DBName, c.DBDSN = "", "", "sqlserver://sa:pw@db:1433?database=hr"
	assert.NoError(t, c.Validate())
}

func TestDSN(t *testing.T) {
	c := &Config{
		DBDriver:   "sqlserver",
		DBHost:     "db",
		DBPort:     1433,
		DBName:     "hr",
		DBUser:     "sa",
		DBPassword: "p@ss",
		DBEncrypt:  true,
	}
	assert.Equal(t, "sqlserver://sa:p%40ss@db:1433?TrustServerCertificate=true&database=hr&encrypt=true", c.DSN())

	c.DBDriver = "pgx"
	c.DBEncrypt = false
	assert.Equal(t, "postgres://sa:p%40ss@db:5432/hr?sslmode=disable", c.DSN())

	c.DBDSN = "postgres://explicit"
	assert.Equal(t, "postgres://explicit", c.DSN())
}

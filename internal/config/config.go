package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	APIPrefix   string `json:"api_prefix"`
	LogLevel    string `json:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Auth
	APIKeyHeader string   `json:"api_key_header"`
	APIKeys      []string `json:"api_keys"`
	EnableAuth   bool     `json:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute"`

	// Attendance store
	DBDriver     string `json:"db_driver"` // "sqlserver" | "pgx"
	DBHost       string `json:"db_host"`
	DBPort       int    `json:"db_port"`
	DBName       string `json:"db_name"`
	DBUser       string `json:"db_user"`
	DBPassword   string `json:"db_password"`
	DBEncrypt    bool   `json:"db_encrypt"`
	DBDSN        string `json:"db_dsn"` // overrides the fields above
	QueryTimeout int    `json:"query_timeout"`
	MaxRows      int    `json:"max_rows"`

	// AI / LLM
	LLMProvider      string `json:"llm_provider"` // "anthropic" | "gemini"
	AnthropicAPIKey  string `json:"anthropic_api_key"`
	AnthropicBaseURL string `json:"anthropic_base_url"`
	GeminiAPIKey     string `json:"gemini_api_key"`
	Model            string `json:"model"`
	AgentTimeout     int    `json:"agent_timeout"`

	// Reporting
	MaxPromptLength int               `json:"max_prompt_length"`
	FallbackDates   string            `json:"fallback_dates"`
	ColumnAliases   map[string]string `json:"column_aliases"`

	// Session state
	SessionBackend string `json:"session_backend"` // "memory" | "redis"
	SessionTTL     int    `json:"session_ttl"`     // seconds
	RedisAddr      string `json:"redis_addr"`
	RedisPassword  string `json:"redis_password"`
	RedisDB        int    `json:"redis_db"`

	// Security
	EnableAuditLogging bool `json:"enable_audit_logging"`
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if path := getEnv("ATTENDAI_DOTENV", ".env"); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		CORSOrigins:        DefaultCORSOrigins,
		APIKeyHeader:       "X-API-Key",
		EnableAuth:         true,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		DBDriver:           DefaultDBDriver,
		DBPort:             DefaultDBPort,
		DBEncrypt:          true,
		QueryTimeout:       DefaultQueryTimeout,
		MaxRows:            DefaultMaxRows,
		LLMProvider:        DefaultLLMProvider,
		AgentTimeout:       DefaultAgentTimeout,
		MaxPromptLength:    DefaultMaxPromptLength,
		FallbackDates:      DefaultFallbackDates,
		ColumnAliases:      copyAliases(DefaultColumnAliases),
		SessionBackend:     DefaultSessionBackend,
		SessionTTL:         DefaultSessionTTL,
		RedisAddr:          DefaultRedisAddr,
		EnableAuditLogging: true,
	}

	// Load from JSON config file if specified
	if path := getEnv("ATTENDAI_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("ATTENDAI_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("ATTENDAI_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("ATTENDAI_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("ATTENDAI_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("ATTENDAI_CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}
	if v := getEnv("ATTENDAI_API_KEYS", ""); v != "" {
		cfg.APIKeys = strings.Split(v, ",")
	}
	if v := getEnv("ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = v == "true" || v == "1"
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("DB_DRIVER", ""); v != "" {
		cfg.DBDriver = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		cfg.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.DBPort = p
		}
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		cfg.DBName = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		cfg.DBUser = v
	}
	if v := getEnv("DB_USER_PASSWORD", ""); v != "" {
		cfg.DBPassword = v
	}
	if v := getEnv("DB_ENCRYPT", ""); v != "" {
		cfg.DBEncrypt = v == "true" || v == "1"
	}
	if v := getEnv("DB_DSN", ""); v != "" {
		cfg.DBDSN = v
	}
	if v := getEnv("QUERY_TIMEOUT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueryTimeout = n
		}
	}
	if v := getEnv("MAX_ROWS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRows = n
		}
	}
	if v := getEnv("LLM_PROVIDER", ""); v != "" {
		cfg.LLMProvider = v
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("GEMINI_API_KEY", ""); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := getEnv("LLM_MODEL", ""); v != "" {
		cfg.Model = v
	}
	if v := getEnv("AGENT_TIMEOUT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AgentTimeout = n
		}
	}
	if v := getEnv("MAX_PROMPT_LENGTH", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPromptLength = n
		}
	}
	if v := getEnv("FALLBACK_DATES", ""); v != "" {
		cfg.FallbackDates = v
	}
	if v := getEnv("SESSION_BACKEND", ""); v != "" {
		cfg.SessionBackend = v
	}
	if v := getEnv("SESSION_TTL", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SessionTTL = n
		}
	}
	if v := getEnv("REDIS_ADDR", ""); v != "" {
		cfg.RedisAddr = v
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		cfg.RedisPassword = v
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := getEnv("ENABLE_AUDIT_LOGGING", ""); v != "" {
		cfg.EnableAuditLogging = v == "true" || v == "1"
	}
}

// Validate reports the first missing setting needed to run the pipeline.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlserver", "pgx":
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.DBDSN == "" && (c.DBHost == "" || c.DBName == "") {
		return errors.New("database not configured: set DB_DSN or DB_HOST and DB_NAME")
	}

	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY not set")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY not set")
		}
	default:
		return fmt.Errorf("unsupported llm_provider %q", c.LLMProvider)
	}

	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported session_backend %q", c.SessionBackend)
	}
	return nil
}

// DSN builds the driver connection string unless one was given explicitly.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == "pgx" {
		port := c.DBPort
		if port == DefaultDBPort {
			port = 5432
		}
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.DBUser, c.DBPassword),
			Host:   fmt.Sprintf("%s:%d", c.DBHost, port),
			Path:   c.DBName,
		}
		q := url.Values{}
		if c.DBEncrypt {
			q.Set("sslmode", "require")
		} else {
			q.Set("sslmode", "disable")
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	q := url.Values{}
	q.Set("database", c.DBName)
	if c.DBEncrypt {
		q.Set("encrypt", "true")
		q.Set("TrustServerCertificate", "true")
	} else {
		q.Set("encrypt", "disable")
	}
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// ModelName returns the configured model or the provider default.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.LLMProvider == "gemini" {
		return DefaultGeminiModel
	}
	return DefaultAnthropicModel
}

func copyAliases(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

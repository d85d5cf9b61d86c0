package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultDBDriver     = "sqlserver"
	DefaultDBPort       = 1433
	DefaultQueryTimeout = 30 // seconds
	DefaultMaxRows      = 5000

	DefaultLLMProvider    = "anthropic"
	DefaultAnthropicModel = "claude-sonnet-4-6"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultAgentTimeout   = 60 // seconds

	DefaultMaxPromptLength = 2000

	// Used when the question carries no explicit range.
	DefaultFallbackDates = "2024-07-01 to 2024-07-31"

	DefaultSessionBackend = "memory"
	DefaultSessionTTL     = 86400 // seconds
	DefaultRedisAddr      = "localhost:6379"

	DefaultCORSMaxAge = 300
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}

// DefaultColumnAliases maps title-cased column names to PDF header labels.
var DefaultColumnAliases = map[string]string{
	"Empname": "Employee Name",
	"Vrdate":  "Date",
}

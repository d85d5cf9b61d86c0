package server

import (
	"context"
	"fmt"
	"time"

	"github.com/attendai/attendai/internal/agent"
	"github.com/attendai/attendai/internal/chat"
	"github.com/attendai/attendai/internal/config"
	"github.com/attendai/attendai/internal/report"
	"github.com/attendai/attendai/internal/security"
	"github.com/attendai/attendai/internal/service"
	"github.com/attendai/attendai/internal/session"
	"github.com/rs/zerolog/log"
)

// App holds the wired reporting pipeline shared by the HTTP server and the CLI.
type App struct {
	Config   *config.Config
	DB       *service.AttendanceService
	Sessions session.Store
	Adapter  *chat.Adapter
}

// NewApp opens the attendance store, the session backend and the language
// model client described by cfg. It does not probe the database; call Probe.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db, err := service.Open(cfg.DBDriver, cfg.DSN(), service.Options{
		QueryTimeout: time.Duration(cfg.QueryTimeout) * time.Second,
		MaxRows:      cfg.MaxRows,
	})
	if err != nil {
		return nil, err
	}

	sessions := newSessionStore(cfg)

	translator := agent.NewTranslator(completer, cfg.DBDriver, time.Duration(cfg.AgentTimeout)*time.Second)
	adapter := chat.NewAdapter(chat.Deps{
		Translator:    translator,
		Executor:      db,
		Renderer:      report.NewRenderer(cfg.ColumnAliases),
		Store:         sessions,
		SQLValidator:  security.NewSQLValidator(),
		Prompts:       security.NewPromptValidator(cfg.MaxPromptLength),
		Audit:         security.NewAuditLogger(cfg.EnableAuditLogging),
		FallbackDates: cfg.FallbackDates,
	})

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("llm_provider", cfg.LLMProvider).
		Str("model", translator.Model()).
		Str("session_backend", cfg.SessionBackend).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("auth enabled but no API keys configured - all API requests will be rejected")
	}

	return &App{Config: cfg, DB: db, Sessions: sessions, Adapter: adapter}, nil
}

// Probe checks database connectivity.
func (a *App) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.DB.TestConnection(ctx); err != nil {
		return fmt.Errorf("database probe: %w", err)
	}
	return nil
}

// Close releases the database pool and the session store.
func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing database")
	}
	if err := a.Sessions.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing session store")
	}
}

func newCompleter(ctx context.Context, cfg *config.Config) (agent.Completer, error) {
	switch cfg.LLMProvider {
	case "gemini":
		c, err := agent.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.ModelName())
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return c, nil
	default:
		return agent.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.ModelName(), cfg.AnthropicBaseURL), nil
	}
}

func newSessionStore(cfg *config.Config) session.Store {
	ttl := time.Duration(cfg.SessionTTL) * time.Second
	if cfg.SessionBackend == "redis" {
		return session.NewRedisStore(session.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, ttl)
	}
	return session.NewMemoryStore(ttl)
}

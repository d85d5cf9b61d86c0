package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/attendai/attendai/internal/config"
	"github.com/attendai/attendai/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "attendai",
	Short: "Attendance reporting assistant",
	Long: `attendai answers plain-language questions about employee attendance.

Questions are translated to a read-only SQL query, executed against the
attendance store, and returned as a table. Results can be exported as PDF.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		setupLogger(cfg, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd, askCmd, checkCmd)
}

func setupLogger(cfg *config.Config, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("attendai failed")
		os.Exit(1)
	}
}

// openApp builds the pipeline and runs the startup connectivity probe.
func openApp(ctx context.Context) (*server.App, error) {
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := app.Probe(ctx); err != nil {
		app.Close()
		return nil, err
	}
	log.Info().Str("db_driver", cfg.DBDriver).Msg("database connection ok")
	return app, nil
}

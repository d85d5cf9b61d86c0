package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/attendai/attendai/internal/chat"
	"github.com/attendai/attendai/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "ask", "check"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, askCmd.Flags().Lookup("pdf"))
}

func TestCheckFailsOnInvalidConfig(t *testing.T) {
	t.Setenv("ATTENDAI_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("ATTENDAI_CONFIG", "")
	t.Setenv("DB_DRIVER", "sqlite")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"check"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported db_driver")
}

func TestAskRequiresQuestion(t *testing.T) {
	t.Setenv("ATTENDAI_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
	rootCmd.SetArgs([]string{"ask"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.Error(t, rootCmd.Execute())
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	setupLogger(&config.Config{LogLevel: "WARN", Environment: "production"}, false)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	setupLogger(&config.Config{LogLevel: "bogus"}, false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	setupLogger(&config.Config{LogLevel: "error"}, true)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestHasAction(t *testing.T) {
	m := chat.Message{Actions: []chat.Action{{Name: chat.ActionDownloadPDF}}}
	assert.True(t, hasAction(m, chat.ActionDownloadPDF))
	assert.False(t, hasAction(chat.Message{}, chat.ActionDownloadPDF))
}

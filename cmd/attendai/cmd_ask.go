package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/attendai/attendai/internal/chat"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const cliConversation = "cli"

var pdfOut string

// askCmd runs one question through the pipeline
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one attendance question",
	Long: `Translates the question to SQL, runs it and prints the report.

Example:
  attendai ask "how many present from 2024-05-01 to 2024-05-31"
  attendai ask "list absent employees" --pdf report.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&pdfOut, "pdf", "", "Write the PDF report to this path")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	msgs := app.Adapter.HandleMessage(ctx, cliConversation, strings.Join(args, " "))
	exportable := false
	for _, m := range msgs {
		if hasAction(m, chat.ActionDownloadPDF) {
			exportable = true
			continue
		}
		fmt.Fprintln(out, m.Content)
	}

	if pdfOut == "" {
		return nil
	}
	if !exportable {
		return fmt.Errorf("no report to export")
	}

	pdf, err := app.Adapter.PDF(ctx, cliConversation)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := os.WriteFile(pdfOut, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", pdfOut, err)
	}
	log.Info().Str("path", pdfOut).Int("bytes", len(pdf)).Msg("pdf written")
	return nil
}

func hasAction(m chat.Message, name string) bool {
	for _, a := range m.Actions {
		if a.Name == name {
			return true
		}
	}
	return false
}

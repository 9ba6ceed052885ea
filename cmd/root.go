package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opsconsole/internal/config"
	"opsconsole/internal/logger"
)

var version = "1.0.0"

// cfg is set by Execute before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "opsconsole",
	Short: "Fill invoice and receipt drafts from extracted document data",
	Long: `opsconsole turns uploaded invoices and receipts into pre-filled financial
records for event projects.

It extracts data from documents with Google Document AI, Cloud Vision and
OpenAI, matches the document to a project, resolves the beneficiary and reuses
or creates the beneficiary's bank account.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute(c *config.Config) {
	log := logger.WithComponent("cmd")
	cfg = c

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

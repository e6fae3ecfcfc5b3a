// Package cli implements the cobra command surface. Commands depend on
// the driving ports; the composition root in cmd/docchat injects the
// concrete services before Execute.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// version is the build version, overridable via ldflags.
var version = "0.1.0"

// Injected services. Nil until SetServices runs; commands guard
// against that for testability.
var (
	documentService driving.DocumentManager
	chatService     driving.ChatService
	settingsStore   driven.SettingsStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents using a local inference server",
	Long: `docchat ingests local documents, chunks and embeds them, and answers
questions grounded in their content via a local Ollama-compatible
inference server.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose diagnostic output")
}

// SetServices injects the concrete services the commands run against.
func SetServices(docs driving.DocumentManager, chat driving.ChatService, settings driven.SettingsStore) {
	documentService = docs
	chatService = chat
	settingsStore = settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

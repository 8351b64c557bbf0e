package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calmux application
var rootCmd = &cobra.Command{
	Use:   "calmux",
	Short: "Unified calendar access across Google, Microsoft Graph, and Exchange",
	Long: `calmux exposes Google Calendar, Microsoft 365 (Graph), and on-premises
Exchange (EWS) calendars through one unified surface: aggregated
availability, conflict detection, and cross-provider event sync.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (serve)
  - A one-shot calendar comparison and copy tool (sync)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calmux version %s\n" .Version}}`)

	// Default to serving MCP over stdio when no subcommand is given.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newVersionCmd())
}

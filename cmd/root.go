package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lazer",
		Short: "Capture and report parking violations to the Philly 311 intake",
		Long: `Lazer captures geotagged photos of parking violations, runs them through
the detection service, and walks you through building a complete report.

Drafts live on disk until they are submitted, so a capture made offline or
abandoned mid-review can be picked back up later with the report command.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newCaptureCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newReprocessCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

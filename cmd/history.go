package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pshebel/lazer/internal/draft"
	"github.com/pshebel/lazer/internal/export"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved drafts, newest first",
		Long: `History lists every saved draft. Opening the history also prunes the
oldest entries beyond the retention cap, matching what the capture screen
does on entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			history := draft.NewHistory(app.store, app.media)
			if err := history.Cleanup(); err != nil {
				slog.Warn("History cleanup failed", "err", err)
			}

			drafts, err := history.List()
			if err != nil {
				return err
			}

			if len(drafts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No drafts yet. Run `lazer capture` to create one.")
				return nil
			}

			for _, d := range drafts {
				status := "draft"
				switch {
				case d.Submitted:
					status = "submitted"
				case !d.Processed:
					status = "needs detection"
				case d.ViolationType != "":
					status = "reviewed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s  %-15s  %s\n",
					d.ID, d.Time.Format("2006-01-02 15:04"), status, d.Address)
			}
			return nil
		},
	}

	cmd.AddCommand(newHistoryExportCmd())

	return cmd
}

func newHistoryExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export OUTPUT",
		Short: "Export draft history to a .jsonl or .parquet file",
		Example: `  # Export as JSON lines
  lazer history export drafts.jsonl

  # Export as parquet for analysis
  lazer history export drafts.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			history := draft.NewHistory(app.store, app.media)
			drafts, err := history.List()
			if err != nil {
				return err
			}

			if err := export.Write(args[0], drafts); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d draft(s) to %s\n", len(drafts), args[0])
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a draft and its photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid draft id %q: %w", args[0], err)
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			d, err := app.store.Load(id)
			if err != nil {
				return err
			}

			history := draft.NewHistory(app.store, app.media)
			if err := history.Delete(d); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted draft %d\n", id)
			return nil
		},
	}
}

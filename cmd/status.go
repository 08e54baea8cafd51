package cmd

import (
	"fmt"

	"github.com/pshebel/lazer/internal/draft"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state, service announcements, and pending drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()

			loggedIn, err := app.store.GetBool(draft.KeyLoggedIn)
			if err != nil {
				return err
			}

			if loggedIn {
				if err := app.client.CheckLogin(cmd.Context()); err != nil {
					loggedIn = false
					if err := app.store.SetBool(draft.KeyLoggedIn, false); err != nil {
						return err
					}
				}
			}

			if loggedIn {
				fmt.Fprintln(out, "Session: active")

				banner, err := app.client.Banner(cmd.Context())
				if err == nil && banner.Active {
					fmt.Fprintf(out, "Announcement: %s\n", banner.Content)
				}
			} else {
				fmt.Fprintln(out, "Session: not logged in (run `lazer login`)")
			}

			history := draft.NewHistory(app.store, app.media)
			drafts, err := history.List()
			if err != nil {
				return err
			}

			pending := 0
			for _, d := range drafts {
				if !d.Submitted {
					pending++
				}
			}
			fmt.Fprintf(out, "Drafts: %d total, %d awaiting report\n", len(drafts), pending)

			return nil
		},
	}
}

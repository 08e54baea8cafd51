package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pshebel/lazer/internal/draft"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store a session key for later submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			if username == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Email: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read username: %w", err)
				}
				username = strings.TrimSpace(line)
			}

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			session, err := app.client.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if err := app.store.SetString(draft.KeySessionKey, session.SessionKey); err != nil {
				return err
			}
			if err := app.store.SetBool(draft.KeyLoggedIn, true); err != nil {
				return err
			}
			if err := app.store.SetBool(draft.KeyIsDonor, session.Donor); err != nil {
				return err
			}

			slog.Info("Logged in", "name", session.FirstName, "expires", session.ExpiryDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s!\n", session.FirstName)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account email (prompted when omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.client.Logout(cmd.Context()); err != nil {
				slog.Warn("Server logout failed, clearing local session anyway", "err", err)
			}

			if err := app.store.SetString(draft.KeySessionKey, ""); err != nil {
				return err
			}
			if err := app.store.SetBool(draft.KeyLoggedIn, false); err != nil {
				return err
			}
			if err := app.store.SetBool(draft.KeyIsDonor, false); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

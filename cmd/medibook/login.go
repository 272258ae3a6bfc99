package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/medibook/internal/client/api"
	"github.com/garrettladley/medibook/internal/config"
	"github.com/garrettladley/medibook/internal/credential"
	"github.com/garrettladley/medibook/internal/session"
)

func loginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token in the system keyring",
		Long:  "Verifies the token against the server and saves it. Reads the token from stdin when --token is not set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			if token == "" {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Paste your access token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("empty token")
			}

			client := api.NewClient(cfg.ServerURL, credential.StaticTokenSource(token), session.NewID())
			snapshot, err := client.Poll(ctx)
			if err != nil {
				return fmt.Errorf("token rejected by %s: %w", cfg.ServerURL, err)
			}

			store, err := openCredentials()
			if err != nil {
				return err
			}
			if err := store.SetToken(token); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in. %d notifications waiting.\n", len(snapshot.Notifications))
			if exp, err := credential.Expiry(token); err == nil && !exp.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Token expires: %s\n", exp.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "access token (default: read from stdin)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCredentials()
			if err != nil {
				return err
			}
			if err := store.DeleteToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

//go:build !release

package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/garrettladley/medibook/internal/client/api"
	"github.com/garrettladley/medibook/internal/config"
	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/service/token"
	"github.com/garrettladley/medibook/internal/session"
)

func addDevCommands(rootCmd *cobra.Command) {
	devCmd := &cobra.Command{
		Use:    "dev",
		Short:  "Development helpers",
		Hidden: true,
	}
	devCmd.AddCommand(devTokenCmd(), devNotifyCmd())
	rootCmd.AddCommand(devCmd)
}

func devTokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token with the server's AUTH_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.ParseAsWithOptions[token.Config](env.Options{Prefix: "AUTH_"})
			if err != nil {
				return fmt.Errorf("failed to read auth config: %w", err)
			}
			if cmd.Flags().Changed("ttl") {
				cfg.TTL = ttl
			}

			signed, err := token.NewJWT(cfg).Issue(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "dev-patient", "user id to put in the subject claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for no expiry (default: AUTH_TTL)")
	return cmd
}

func devNotifyCmd() *cobra.Command {
	var (
		kind  string
		title string
		body  string
		link  string
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a notification to yourself",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			tokens, _, err := tokenSource(cfg)
			if err != nil {
				return err
			}

			client := api.NewClient(cfg.ServerURL, tokens, session.NewID())
			created, err := client.Create(ctx, api.CreateRequest{
				Kind:  notification.ParseKind(kind),
				Title: title,
				Body:  body,
				Link:  link,
			})
			if err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(notification.KindInfo), "info, success, warning or error")
	cmd.Flags().StringVar(&title, "title", "Test notification", "notification title")
	cmd.Flags().StringVar(&body, "body", "", "notification body")
	cmd.Flags().StringVar(&link, "link", "", "optional link")
	return cmd
}

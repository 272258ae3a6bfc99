package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/medibook/internal/credential"
	"github.com/garrettladley/medibook/internal/paths"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Show the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.Credentials()
			if err != nil {
				return err
			}

			store, err := credential.Open(dir)
			if err != nil {
				return fmt.Errorf("failed to open keyring: %w", err)
			}

			raw, err := store.Token()
			if errors.Is(err, credential.ErrNoToken) {
				cmd.Println("No token stored. Run `medibook login` first.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get token: %w", err)
			}

			subject, err := credential.Subject(raw)
			if err != nil {
				return err
			}
			expiry, err := credential.Expiry(raw)
			if err != nil {
				return err
			}

			cmd.Printf("Access Token:  %s\n", raw)
			cmd.Printf("Subject:       %s\n", subject)

			switch {
			case expiry.IsZero():
				cmd.Printf("Expiry:        never\n")
			case expiry.Before(time.Now()):
				cmd.Printf("Expiry:        %s\n", expiry.Format(time.RFC3339))
				cmd.Printf("Status:        EXPIRED\n")
			default:
				cmd.Printf("Expiry:        %s\n", expiry.Format(time.RFC3339))
				cmd.Printf("Status:        Valid (expires in %s)\n", time.Until(expiry).Round(time.Second))
			}
			return nil
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/garrettladley/medibook/internal/client/github"
	"github.com/garrettladley/medibook/internal/version"
)

func upgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Check for updates and install if available",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			currentVersion := version.Get()

			client := github.NewClient(github.WithToken(os.Getenv("GITHUB_TOKEN")))
			latest, err := client.LatestRelease(ctx)
			if errors.Is(err, github.ErrNoRelease) {
				fmt.Printf("No published release yet (running %s)\n", currentVersion)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to check for updates: %w", err)
			}

			if !version.IsNewer(currentVersion, latest.TagName) {
				fmt.Printf("medibook is up to date (%s)\n", currentVersion)
				return nil
			}

			fmt.Printf("Updating medibook %s → %s (%s)\n", currentVersion, latest.TagName, latest.HTMLURL)

			if version.IsHomebrew() {
				return brewUpgrade(ctx)
			}

			return goInstallUpgrade(ctx)
		},
	}
}

func goInstallUpgrade(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "go", "install", "github.com/garrettladley/medibook/cmd/medibook@latest")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("upgrade failed: %w", err)
	}
	fmt.Println("Successfully updated!")
	return nil
}

func brewUpgrade(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "brew", "upgrade", "medibook")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("brew upgrade failed: %w", err)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/garrettladley/medibook/internal/cache"
	"github.com/garrettladley/medibook/internal/migrations/postgres"
	"github.com/garrettladley/medibook/internal/paths"
)

type databaseConfig struct {
	URL string `env:"DATABASE_URL,required"`
}

func migrateCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  "Apply pending migrations to the server database at DATABASE_URL, or with --cache to the local notification cache.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				return migrateCache(cmd)
			}
			return migratePostgres(cmd)
		},
	}
	cmd.Flags().BoolVar(&local, "cache", false, "migrate the local SQLite cache instead of the server database")
	return cmd
}

func migratePostgres(cmd *cobra.Command) error {
	cfg, err := env.ParseAs[databaseConfig]()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	pool, err := pgxpool.New(cmd.Context(), cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	if err := postgres.Apply(cmd.Context(), pool); err != nil {
		return err
	}

	cmd.Println("Migrations applied successfully")
	return nil
}

func migrateCache(cmd *cobra.Command) error {
	if _, err := paths.EnsureDir(); err != nil {
		return err
	}

	dbPath, err := paths.DB()
	if err != nil {
		return err
	}

	// opening applies migrations
	store, err := cache.OpenSQLite(cmd.Context(), dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	cmd.Printf("Migrations applied to %s\n", dbPath)
	return nil
}

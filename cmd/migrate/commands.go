package main

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"recipe-backend/internal/config"
	"recipe-backend/internal/infrastructure/database/migrations"
)

// openDB mở kết nối database/sql (driver lib/pq) từ cấu hình DB_*
type openDB func() (*sql.DB, error)

func openFromEnv() (*sql.DB, error) {
	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// NewRootCommand tạo lệnh gốc: migrate up | down | version | seed.
// up/down/version chỉ là lớp mỏng trên goose (migrations.Migrator).
func NewRootCommand() *cobra.Command {
	return newRootCommand(openFromEnv)
}

func newRootCommand(open openDB) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the recipe database schema and seed data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newUpCommand(open))
	cmd.AddCommand(newDownCommand(open))
	cmd.AddCommand(newVersionCommand(open))
	cmd.AddCommand(newSeedCommand(open))

	return cmd
}

func newUpCommand(open openDB) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, open, func(ctx context.Context, m *migrations.Migrator) error {
				applied, err := m.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
				return nil
			})
		},
	}
}

func newDownCommand(open openDB) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			return withMigrator(cmd, open, func(ctx context.Context, m *migrations.Migrator) error {
				reverted, err := m.Down(ctx, steps)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reverted %d migration(s)\n", reverted)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")
	return cmd
}

func newVersionCommand(open openDB) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, open, func(ctx context.Context, m *migrations.Migrator) error {
				version, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
				return nil
			})
		},
	}
}

func newSeedCommand(open openDB) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the ingredient catalog and sample recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := migrations.DefaultSeed()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := migrations.Seed(ctx, db, data, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d ingredient(s), %d recipe(s), skipped %d existing recipe(s)\n",
				result.IngredientsInserted, result.RecipesInserted, result.RecipesSkipped)
			return nil
		},
	}
}

func withMigrator(cmd *cobra.Command, open openDB, fn func(ctx context.Context, m *migrations.Migrator) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := open()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := migrations.NewMigrator(db)
	if err != nil {
		return err
	}
	return fn(ctx, m)
}

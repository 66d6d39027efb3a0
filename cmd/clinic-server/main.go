// clinic-server is the dermatology clinic management API. It serves patient,
// scheduling, prescription and skin-analysis endpoints over HTTP, backed by
// either an in-memory store or Postgres.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dermaclinic/dermaclinic/internal/config"
	"github.com/dermaclinic/dermaclinic/internal/platform/db"
)

func main() {
	root := &cobra.Command{
		Use:           "clinic-server",
		Short:         "Dermatology clinic management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, newLogger(cfg))
		},
	}
}

func migrateCmd() *cobra.Command {
	var dir string

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrate.PersistentFlags().StringVar(&dir, "dir", "migrations", "directory containing .sql migration files")

	withMigrator := func(ctx context.Context, fn func(context.Context, *db.Migrator, zerolog.Logger) error) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for migrations")
		}
		logger := newLogger(cfg)

		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		return fn(ctx, db.NewMigrator(pool, dir), logger)
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error {
					n, err := m.Up(ctx)
					if err != nil {
						return err
					}
					logger.Info().Int("applied", n).Msg("migrations complete")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *db.Migrator, _ zerolog.Logger) error {
					statuses, err := m.Status(ctx)
					if err != nil {
						return err
					}
					for _, st := range statuses {
						state := "pending"
						if st.Applied {
							state = "applied " + st.AppliedAt.Format(time.RFC3339)
						}
						fmt.Printf("%03d %-30s %s\n", st.Version, st.Name, state)
					}
					return nil
				})
			},
		},
	)
	return migrate
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate demo users, a sample patient and the medication catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to seed demo data in production")
			}
			return seed(cmd.Context(), cfg, newLogger(cfg))
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

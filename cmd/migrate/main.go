// Package main provides the schema migration CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"supplyfin/internal/infrastructure/config"
	"supplyfin/internal/infrastructure/migration"
	"supplyfin/pkg/logger"
)

var dsn string

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Apply supplyfin database migrations",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migration.Migrator) error {
			return m.Up(ctx)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, all of them when steps is omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migration.Migrator) error {
			return m.Down(ctx, steps)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd.Context(), func(_ context.Context, m *migration.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Set the schema version without running migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migration.Migrator) error {
			return m.Force(ctx, version)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "database URL (defaults to the configured database)")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd)
}

func withMigrator(ctx context.Context, fn func(context.Context, *migration.Migrator) error) error {
	url := dsn
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		url = cfg.Database.DSN()
	}

	m, err := migration.New(url)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn(ctx, "failed to close migrator", "error", err)
		}
	}()
	return fn(ctx, m)
}

func main() {
	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

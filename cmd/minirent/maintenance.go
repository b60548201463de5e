package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/stats"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, func(ctx context.Context, database *sql.DB) error {
				if err := db.Migrate(ctx, database); err != nil {
					return err
				}
				version, err := db.SchemaVersion(ctx, database)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d.\n", version)
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Owner statistics maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the owner statistics snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, func(ctx context.Context, database *sql.DB) error {
				report, err := stats.Refresh(ctx, database, time.Now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Refreshed statistics for %d owners in %s.\n", report.Owners, report.Duration)
				for _, d := range report.Drift {
					fmt.Fprintf(out, "  property %d is %s with %d active rentals\n", d.PropertyID, d.Status, d.ActiveRentals)
				}
				return nil
			})
		},
	})
	return cmd
}

// withDatabase opens an existing database for a maintenance command.
func withDatabase(cmd *cobra.Command, fn func(ctx context.Context, database *sql.DB) error) error {
	cfg, closeLog, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	if dbMissing(cfg.DBPath) {
		return fmt.Errorf("database file %s does not exist, run init first", cfg.DBPath)
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	return fn(ctx, database)
}

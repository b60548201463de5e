package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/minirent/internal/auth"
	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/store"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and its first admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, closeLog, err := prepare(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			if _, err := os.Stat(cfg.DBPath); err == nil {
				return fmt.Errorf("database file %s already exists", cfg.DBPath)
			}

			database, password, err := initDatabase(cmd.Context(), cfg.DBPath, cfg.AdminUser)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cmd.OutOrStdout(), cfg.DBPath, cfg.AdminUser, password)
			return nil
		},
	}
}

// dbMissing reports whether the database file has yet to be created.
func dbMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}

// initDatabase creates a database at path, migrates it and adds an admin
// with a random password. The file is removed again if any step fails.
func initDatabase(ctx context.Context, path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", err
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.Migrate(ctx, database); err != nil {
		return fail(err)
	}

	password, err := auth.GeneratePassword()
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}
	if _, err := store.CreateUser(ctx, database, adminUsername, hash, model.RoleAdmin, ""); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return database, password, nil
}

func printInitResult(w io.Writer, dbPath, username, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

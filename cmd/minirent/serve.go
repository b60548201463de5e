package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/minirent/internal/api"
	"github.com/erazemk/minirent/internal/blob"
	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/metrics"
	"github.com/erazemk/minirent/internal/stats"
	"github.com/erazemk/minirent/internal/store"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, closeLog, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()

	// First run: create the database and print the admin credentials once.
	if dbMissing(cfg.DBPath) {
		database, password, err := initDatabase(ctx, cfg.DBPath, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()
		printInitResult(cmd.OutOrStdout(), cfg.DBPath, cfg.AdminUser, password)
		fmt.Fprintln(cmd.OutOrStdout())
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	version, err := db.SchemaVersion(ctx, database)
	if err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DBPath, "schema", version)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	blobs, err := blob.Open(ctx, cfg.BlobDriver, database, cfg.S3)
	if err != nil {
		return err
	}

	m := metrics.New()
	scheduler := stats.NewScheduler(database, cfg.StatsSchedule, m)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	router := api.NewRouter(database, jwtSecret, api.Options{
		TokenExpiry: cfg.TokenExpiry,
		Blobs:       blobs,
		Metrics:     m,
		Stats:       scheduler,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "blobs", string(blobs.Driver()), "stats_schedule", cfg.StatsSchedule)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

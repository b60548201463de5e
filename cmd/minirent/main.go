// Command minirent runs the property rental service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/minirent/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "minirent",
		Short:         "Property rental service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env-file", ".env", "dotenv file read before the environment")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		serveCmd(),
		initCmd(),
		migrateCmd(),
		statsCmd(),
	)
	return root
}

// prepare loads the configuration and installs the logger. The returned
// cleanup is never nil.
func prepare(cmd *cobra.Command) (config.Config, func(), error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(envFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if closeLog == nil {
		closeLog = func() {}
	}
	return cfg, closeLog, nil
}

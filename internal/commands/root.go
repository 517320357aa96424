// Package commands implements the auctiond command line.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"auction-marketplace/internal/config"
	"auction-marketplace/utils"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. The config is loaded once before any subcommand runs.
func NewRootCommand() *cobra.Command {
	var configPath string
	cfg := config.Defaults()

	root := &cobra.Command{
		Use:           "auctiond",
		Short:         "Auction marketplace API and ledger indexer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded
			utils.ConfigureLogger(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")

	root.AddCommand(
		MakeServeCommand(cfg),
		MakeIndexCommand(cfg),
		MakeMigrateCommand(cfg),
		MakeSyncCommand(cfg),
	)
	return root
}

// Execute runs the command line until it finishes or the process is interrupted
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		utils.Error("command failed", map[string]any{"error": err.Error()})
		cancel()
		os.Exit(1)
	}
}

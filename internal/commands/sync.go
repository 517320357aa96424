package commands

import (
	"fmt"

	"auction-marketplace/internal/config"
	"auction-marketplace/internal/indexer"

	"github.com/spf13/cobra"
)

// MakeSyncCommand reconciles a single object without going through events.
// Requires database.url.
func MakeSyncCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "sync <listing|bid> <object-id>",
		Short:   "Fetch one object from the ledger and upsert it",
		Example: `  auctiond sync listing 0x5f2c...`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := indexer.ParseKind(args[0])
			if err != nil {
				return err
			}

			if err := requireDatabase(cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			db, release, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			handler := indexer.NewHandler(newSuiClient(cfg.Sui), db)
			if err := handler.SyncObject(ctx, kind, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %s %s\n", kind, args[1])
			return nil
		},
	}
}

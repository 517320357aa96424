package commands

import (
	"fmt"

	"auction-marketplace/internal/config"

	"github.com/spf13/cobra"
)

// MakeIndexCommand runs the event poller on its own
func MakeIndexCommand(cfg *config.Config) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Mirror listing and bid objects from ledger events",
		Long: `
index follows the events emitted by the listing and bid modules of the configured
package, fetches the object each event names and upserts it into the store. The
position in each module's event stream is saved, so a restart resumes where the
previous run stopped.`,
		Example: `
	auctiond index
	auctiond index --once`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, release, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			poller := newPoller(cfg, db)
			if !once {
				return poller.Run(ctx)
			}

			stats, err := poller.PollOnce(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "received=%d upserted=%d skipped=%d failed=%d malformed=%d\n",
				stats.Received, stats.Upserted, stats.Skipped, stats.Failed, stats.Malformed)
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "drain pending events once and exit")
	return cmd
}

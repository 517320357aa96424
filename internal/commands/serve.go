package commands

import (
	"context"
	"errors"
	"net/http"

	"auction-marketplace/internal/config"
	market "auction-marketplace/internal/marketService"
	"auction-marketplace/internal/server"
	"auction-marketplace/utils"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// MakeServeCommand runs the HTTP API and, unless disabled, the event poller
func MakeServeCommand(cfg *config.Config) *cobra.Command {
	var noIndexer bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the marketplace API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, release, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			router, err := server.SetupRouter(market.NewMarketService(db))
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:         cfg.Server.Addr(),
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				utils.Info("starting auction server", map[string]any{"addr": srv.Addr})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				utils.Info("shutting down auction server", nil)
				return srv.Shutdown(shutdownCtx)
			})

			if cfg.Indexer.Enabled && !noIndexer {
				poller := newPoller(cfg, db)
				g.Go(func() error { return poller.Run(gctx) })
			}

			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&noIndexer, "no-indexer", false, "serve the API without polling ledger events")
	return cmd
}

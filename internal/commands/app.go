package commands

import (
	"context"
	"fmt"

	"auction-marketplace/internal/cache"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/indexer"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/repository/migrations"
	"auction-marketplace/internal/sui"
	"auction-marketplace/utils"
)

// openStore picks the store from config: postgres when a URL is set, memory otherwise,
// optionally fronted by the Redis listing cache. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (repository.MarketDB, func(), error) {
	var (
		db      repository.MarketDB
		closers []func()
	)
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.URL == "" {
		utils.Warn("no database configured, using in-memory store", nil)
		db = repository.NewMemoryRepo()
	} else {
		if cfg.Database.AutoMigrate {
			if err := migrations.Up(cfg.Database.URL); err != nil {
				return nil, nil, err
			}
		}
		pool, err := repository.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pg := repository.NewPostgresRepo(pool)
		closers = append(closers, pg.Close)
		db = pg
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			release()
			return nil, nil, err
		}
		closers = append(closers, func() { client.Close() })
		db = repository.NewCachedRepo(db, cache.NewListingCache(client, cfg.Redis.TTL))
		utils.Info("listing cache enabled", map[string]any{"addr": cfg.Redis.Addr, "ttl": cfg.Redis.TTL.String()})
	}

	return db, release, nil
}

func newSuiClient(cfg config.SuiConfig) *sui.Client {
	return sui.NewClient(cfg.RPCURL,
		sui.WithTimeout(cfg.Timeout),
		sui.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
	)
}

func newPoller(cfg *config.Config, db repository.MarketDB) *indexer.Poller {
	client := newSuiClient(cfg.Sui)
	handler := indexer.NewHandler(client, db)
	subs := indexer.Subscriptions(cfg.Sui.PackageID, cfg.Indexer)
	return indexer.NewPoller(client, handler, db, subs, cfg.Indexer)
}

func requireDatabase(cfg *config.Config) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required (set %sDATABASE__URL)", config.EnvPrefix)
	}
	return nil
}

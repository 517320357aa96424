package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/internal/config"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/sui"
	"auction-marketplace/utils"
)

// Subscription ties a Move module to the kind of object its events name
type Subscription struct {
	Kind   Kind
	Module sui.MoveModule
}

// Poller follows module events with suix_queryEvents and feeds them to a Handler.
// The position in each module's event stream is kept in the store.
type Poller struct {
	source   EventSource
	handler  *Handler
	db       repository.MarketDB
	subs     []Subscription
	interval time.Duration
	batch    int
}

// Subscriptions builds the listing and bid subscriptions for packageID
func Subscriptions(packageID string, cfg config.IndexerConfig) []Subscription {
	return []Subscription{
		{Kind: KindListing, Module: sui.MoveModule{Package: packageID, Module: cfg.ListingModule}},
		{Kind: KindBid, Module: sui.MoveModule{Package: packageID, Module: cfg.BidModule}},
	}
}

// NewPoller creates a poller over subs
func NewPoller(source EventSource, handler *Handler, db repository.MarketDB, subs []Subscription, cfg config.IndexerConfig) *Poller {
	p := &Poller{
		source:   source,
		handler:  handler,
		db:       db,
		subs:     subs,
		interval: cfg.PollInterval,
		batch:    cfg.BatchSize,
	}
	if p.interval <= 0 {
		p.interval = time.Second
	}
	if p.batch <= 0 {
		p.batch = repository.DefaultLimit
	}
	return p
}

// Run polls every interval until ctx is cancelled. Poll errors are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	utils.Info("event poller started", map[string]any{"interval": p.interval.String(), "batch_size": p.batch})

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			utils.Error("event poll failed", map[string]any{"error": err.Error()})
		}

		select {
		case <-ctx.Done():
			utils.Info("event poller stopped", nil)
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce drains every subscription up to the newest event. Subscriptions are
// independent: an error in one does not stop the others.
func (p *Poller) PollOnce(ctx context.Context) (SyncStats, error) {
	var total SyncStats
	var errs []error

	for _, sub := range p.subs {
		stats, err := p.pollSubscription(ctx, sub)
		total.add(stats)
		if err != nil {
			pollErrorsTotal.WithLabelValues(sub.Module.Module).Inc()
			errs = append(errs, fmt.Errorf("module %s: %w", sub.Module.Module, err))
		}
	}
	return total, errors.Join(errs...)
}

func (p *Poller) pollSubscription(ctx context.Context, sub Subscription) (SyncStats, error) {
	var total SyncStats
	filter := sui.EventFilter{MoveEventModule: &sub.Module}
	name := sub.Module.Module

	for {
		cursor, err := p.cursor(ctx, name)
		if err != nil {
			return total, err
		}

		page, err := p.source.QueryEvents(ctx, filter, cursor, p.batch, false)
		if err != nil {
			return total, err
		}
		pollPagesTotal.WithLabelValues(name).Inc()

		if len(page.Data) == 0 {
			return total, nil
		}

		stats, err := p.handler.Handle(ctx, sub.Kind, page.Data, sub.Module.TypePrefix())
		total.add(stats)
		if err != nil {
			// the cursor stays put so the page is retried on the next round
			return total, err
		}

		if page.NextCursor != nil {
			if err := p.db.SaveCursor(ctx, name, *page.NextCursor); err != nil {
				return total, err
			}
		}

		utils.Debug("processed event page", map[string]any{
			"module": name, "received": stats.Received, "upserted": stats.Upserted,
			"skipped": stats.Skipped, "failed": stats.Failed, "has_next_page": page.HasNextPage,
		})

		if !page.HasNextPage || page.NextCursor == nil {
			return total, nil
		}
	}
}

// cursor returns the saved position for module, or nil to start from the first event
func (p *Poller) cursor(ctx context.Context, module string) (*model.EventID, error) {
	id, err := p.db.GetCursor(ctx, module)
	if errors.Is(err, marketerrors.ErrCursorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

package repository

import (
	"context"
	"time"

	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"
)

// ListingCache is the read-through cache used by CachedRepo
type ListingCache interface {
	Get(ctx context.Context, id string) (model.Listing, bool, error)
	Set(ctx context.Context, listing model.Listing) error
	// Add stores listing only when no entry exists for its id
	Add(ctx context.Context, listing model.Listing) (bool, error)
	Delete(ctx context.Context, id string) error
}

// CachedRepo serves GetListing from a cache and refreshes entries on upsert.
// Reads only ever add missing entries, so a slow read cannot overwrite a newer write.
// Cache failures are logged and never fail the call.
type CachedRepo struct {
	MarketDB
	cache ListingCache
}

// NewCachedRepo wraps db with cache
func NewCachedRepo(db MarketDB, cache ListingCache) *CachedRepo {
	return &CachedRepo{MarketDB: db, cache: cache}
}

// GetListing returns the cached listing or loads and caches it
func (r *CachedRepo) GetListing(ctx context.Context, id string) (model.Listing, error) {
	listing, ok, err := r.cache.Get(ctx, id)
	if err != nil {
		utils.Warn("listing cache read failed", map[string]any{"listing_id": id, "error": err.Error()})
	}
	if ok {
		return listing, nil
	}

	listing, err = r.MarketDB.GetListing(ctx, id)
	if err != nil {
		return model.Listing{}, err
	}

	if _, err := r.cache.Add(ctx, listing); err != nil {
		utils.Warn("listing cache write failed", map[string]any{"listing_id": id, "error": err.Error()})
	}
	return listing, nil
}

// UpsertListing writes through to the store and then replaces the cached copy.
// When the cache cannot be updated the entry is dropped instead.
func (r *CachedRepo) UpsertListing(ctx context.Context, listing model.Listing) error {
	if listing.UpdatedAt.IsZero() {
		listing.UpdatedAt = time.Now().UTC()
	}
	if err := r.MarketDB.UpsertListing(ctx, listing); err != nil {
		return err
	}

	err := r.cache.Set(ctx, listing)
	if err == nil {
		return nil
	}
	utils.Warn("listing cache refresh failed", map[string]any{"listing_id": listing.ID, "error": err.Error()})
	if err := r.cache.Delete(ctx, listing.ID); err != nil {
		utils.Warn("listing cache invalidation failed", map[string]any{"listing_id": listing.ID, "error": err.Error()})
	}
	return nil
}

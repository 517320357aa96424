package repository

import (
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// Pagination bounds shared by every store
const (
	DefaultLimit = 50
	MaxLimit     = 50
)

// MarketDB defines the storage interface for mirrored listings, bids and indexer cursors
type MarketDB interface {
	UpsertListing(ctx context.Context, listing model.Listing) error
	UpsertBid(ctx context.Context, bid model.Bid) error
	GetListing(ctx context.Context, id string) (model.Listing, error)
	ListListings(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error)
	ActiveListings(ctx context.Context, now time.Time) ([]model.Listing, error)
	ListBids(ctx context.Context, filter model.BidFilter) ([]model.Bid, error)
	GetCursor(ctx context.Context, module string) (model.EventID, error)
	SaveCursor(ctx context.Context, module string, id model.EventID) error
}

// NormalizePage applies the default limit and sort order
func NormalizePage(p model.Page) model.Page {
	if p.Limit <= 0 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	if p.Sort != model.SortAsc {
		p.Sort = model.SortDesc
	}
	return p
}

// MemoryRepo is a concurrency-safe in-memory implementation of MarketDB
type MemoryRepo struct {
	mu       sync.RWMutex
	listings map[string]model.Listing // key: object id
	bids     map[string]model.Bid     // key: object id
	cursors  map[string]model.Cursor  // key: module name
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		listings: make(map[string]model.Listing),
		bids:     make(map[string]model.Bid),
		cursors:  make(map[string]model.Cursor),
	}
}

// UpsertListing creates the listing or replaces the stored one with the same id
func (r *MemoryRepo) UpsertListing(_ context.Context, listing model.Listing) error {
	if listing.ID == "" {
		return fmt.Errorf("upsert listing: %w - empty id", marketerrors.ErrInvalidListing)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ID] = listing
	return nil
}

// UpsertBid creates the bid or replaces the stored one with the same id
func (r *MemoryRepo) UpsertBid(_ context.Context, bid model.Bid) error {
	if bid.ID == "" {
		return fmt.Errorf("upsert bid: %w - empty id", marketerrors.ErrInvalidBid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids[bid.ID] = bid
	return nil
}

// GetListing returns a single listing
func (r *MemoryRepo) GetListing(_ context.Context, id string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", id, marketerrors.ErrListingNotFound)
	}
	return listing, nil
}

// ListListings returns one page of listings matching every non-nil filter field
func (r *MemoryRepo) ListListings(_ context.Context, filter model.ListingFilter) ([]model.Listing, error) {
	r.mu.RLock()
	matched := make([]model.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		if matchString(filter.Name, l.Name) &&
			matchString(filter.Description, l.Description) &&
			matchTime(filter.EndTime, l.EndTime) &&
			matchInt(filter.MinBid, l.MinBid) {
			matched = append(matched, l)
		}
	}
	r.mu.RUnlock()

	return paginate(matched, filter.Page, func(l model.Listing) string { return l.ID }), nil
}

// ActiveListings returns listings whose end time is after now, soonest first
func (r *MemoryRepo) ActiveListings(_ context.Context, now time.Time) ([]model.Listing, error) {
	r.mu.RLock()
	active := make([]model.Listing, 0)
	for _, l := range r.listings {
		if l.EndTime != nil && l.EndTime.After(now) {
			active = append(active, l)
		}
	}
	r.mu.RUnlock()

	sort.Slice(active, func(i, j int) bool {
		if !active[i].EndTime.Equal(*active[j].EndTime) {
			return active[i].EndTime.Before(*active[j].EndTime)
		}
		return active[i].ID < active[j].ID
	})
	return active, nil
}

// ListBids returns one page of bids matching every non-nil filter field
func (r *MemoryRepo) ListBids(_ context.Context, filter model.BidFilter) ([]model.Bid, error) {
	r.mu.RLock()
	matched := make([]model.Bid, 0, len(r.bids))
	for _, b := range r.bids {
		if matchString(filter.Name, b.Name) &&
			matchInt(filter.Amount, b.Amount) &&
			matchTime(filter.EndTime, b.EndTime) &&
			matchInt(filter.MinBid, b.MinBid) {
			matched = append(matched, b)
		}
	}
	r.mu.RUnlock()

	return paginate(matched, filter.Page, func(b model.Bid) string { return b.ID }), nil
}

// GetCursor returns the last processed event for module
func (r *MemoryRepo) GetCursor(_ context.Context, module string) (model.EventID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cursors[module]
	if !ok {
		return model.EventID{}, fmt.Errorf("get cursor %s: %w", module, marketerrors.ErrCursorNotFound)
	}
	return c.EventID, nil
}

// SaveCursor records the last processed event for module
func (r *MemoryRepo) SaveCursor(_ context.Context, module string, id model.EventID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursors[module] = model.Cursor{Module: module, EventID: id, UpdatedAt: time.Now().UTC()}
	return nil
}

// paginate orders items by id and returns the page after the cursor
func paginate[T any](items []T, page model.Page, id func(T) string) []T {
	page = NormalizePage(page)

	sort.Slice(items, func(i, j int) bool {
		if page.Sort == model.SortAsc {
			return id(items[i]) < id(items[j])
		}
		return id(items[i]) > id(items[j])
	})

	out := make([]T, 0, page.Limit)
	for _, item := range items {
		if page.Cursor != "" {
			if page.Sort == model.SortAsc && id(item) <= page.Cursor {
				continue
			}
			if page.Sort == model.SortDesc && id(item) >= page.Cursor {
				continue
			}
		}
		out = append(out, item)
		if len(out) == page.Limit {
			break
		}
	}
	return out
}

func matchString(want *string, got string) bool {
	return want == nil || *want == got
}

func matchInt(want *int64, got *int64) bool {
	return want == nil || (got != nil && *want == *got)
}

func matchTime(want *time.Time, got *time.Time) bool {
	return want == nil || (got != nil && want.Equal(*got))
}

package market

import (
	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"fmt"
	"strings"
	"time"
)

// MarketService defines the business logic behind the marketplace API
type MarketService struct {
	repo repository.MarketDB
	now  func() time.Time
}

// NewMarketService creates a new MarketService instance
func NewMarketService(repo repository.MarketDB) *MarketService {
	return &MarketService{
		repo: repo,
		now:  time.Now,
	}
}

// CreateListing validates and stores a listing, replacing any listing with the same id
func (s *MarketService) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	listing.ID = strings.TrimSpace(listing.ID)
	listing.Name = strings.TrimSpace(listing.Name)

	if listing.ID == "" || listing.Name == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing id or name", marketerrors.ErrInvalidListing)
	}
	if listing.EndTime == nil {
		return models.Listing{}, fmt.Errorf("service: %w - missing end time", marketerrors.ErrInvalidListing)
	}
	if listing.MinBid != nil && *listing.MinBid < 0 {
		return models.Listing{}, fmt.Errorf("service: %w - negative minimum bid", marketerrors.ErrInvalidListing)
	}

	listing.UpdatedAt = s.now().UTC()
	if err := s.repo.UpsertListing(ctx, listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to store listing %s: %w", listing.ID, err)
	}

	return listing, nil
}

// PlaceBid checks that the listing exists and is still open.
// Nothing is stored: the bid is settled on the ledger and indexed from there.
func (s *MarketService) PlaceBid(ctx context.Context, listingID, bidder string, amount int64) (models.BidAck, error) {
	if listingID == "" {
		return models.BidAck{}, fmt.Errorf("service: %w - missing listing id", marketerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.BidAck{}, fmt.Errorf("service: %w - non-positive bid amount", marketerrors.ErrInvalidBid)
	}

	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return models.BidAck{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}

	now := s.now().UTC()
	if listing.EndTime == nil {
		return models.BidAck{}, fmt.Errorf("service: listing %s: %w", listingID, marketerrors.ErrNoEndTime)
	}
	if !listing.EndTime.After(now) {
		return models.BidAck{}, fmt.Errorf("service: listing %s ended at %s: %w",
			listingID, listing.EndTime.Format(time.RFC3339), marketerrors.ErrListingExpired)
	}

	return models.BidAck{
		ListingID:  listingID,
		Bidder:     bidder,
		Amount:     amount,
		AcceptedAt: now,
	}, nil
}

// GetListing returns a single listing
func (s *MarketService) GetListing(ctx context.Context, listingID string) (models.Listing, error) {
	if listingID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - empty listing id", marketerrors.ErrInvalidListing)
	}

	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}

	return listing, nil
}

// ActiveListings returns listings that have not ended yet, soonest ending first
func (s *MarketService) ActiveListings(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.repo.ActiveListings(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("service: failed to get active listings: %w", err)
	}

	return listings, nil
}

// ListListings returns one page of listings matching filter
func (s *MarketService) ListListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	filter.Page = repository.NormalizePage(filter.Page)

	listings, err := s.repo.ListListings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list listings: %w", err)
	}

	return listings, nil
}

// ListBids returns one page of bids matching filter
func (s *MarketService) ListBids(ctx context.Context, filter models.BidFilter) ([]models.Bid, error) {
	filter.Page = repository.NormalizePage(filter.Page)

	bids, err := s.repo.ListBids(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids: %w", err)
	}

	return bids, nil
}

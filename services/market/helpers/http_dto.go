package helpers

import (
	"time"

	model "auction-marketplace/internal/models"
)

// Request/Response DTOs
type CreateListingRequest struct {
	ID          string     `json:"id" binding:"required,objectid"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	EndTime     *Timestamp `json:"endTime" binding:"required"`
	MinBid      *int64     `json:"minBid" binding:"omitempty,gte=0"`
}

type PlaceBidRequest struct {
	ListingID string `json:"listingId" binding:"required,objectid"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Bidder    string `json:"bidder" binding:"omitempty,objectid"`
}

type ListingResponse struct {
	ID          string  `json:"id"`
	Owner       string  `json:"owner"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	EndTime     *string `json:"end_time"`
	MinBid      *int64  `json:"min_bid"`
	MinBidSui   *string `json:"min_bid_sui"`
	MaxBid      *int64  `json:"max_bid"`
	MaxBidSui   *string `json:"max_bid_sui"`
	BidCount    int     `json:"bid_count"`
	UpdatedAt   string  `json:"updated_at"`
}

type BidResponse struct {
	ID        string  `json:"id"`
	ListingID string  `json:"listing_id"`
	Bidder    string  `json:"bidder"`
	Name      string  `json:"name"`
	Amount    *int64  `json:"bid_amount"`
	AmountSui *string `json:"bid_amount_sui"`
	EndTime   *string `json:"end_time"`
	MinBid    *int64  `json:"min_bid"`
	UpdatedAt string  `json:"updated_at"`
}

type BidAckResponse struct {
	ListingID  string `json:"listing_id"`
	Bidder     string `json:"bidder"`
	Amount     int64  `json:"amount"`
	AmountSui  string `json:"amount_sui"`
	AcceptedAt string `json:"accepted_at"`
}

// PageResponse is one page of results. Cursor is the id of the last item and is empty only
// when the page has no items; a full final page still carries one.
type PageResponse[T any] struct {
	Items  []T    `json:"items"`
	Cursor string `json:"cursor"`
}

// ToListingResponse converts a listing for output
func ToListingResponse(l model.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Owner:       l.Owner,
		Name:        l.Name,
		Description: l.Description,
		EndTime:     formatTime(l.EndTime),
		MinBid:      l.MinBid,
		MinBidSui:   suiString(l.MinBid),
		MaxBid:      l.MaxBid,
		MaxBidSui:   suiString(l.MaxBid),
		BidCount:    l.BidCount,
		UpdatedAt:   l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToBidResponse converts a bid for output
func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		ID:        b.ID,
		ListingID: b.ListingID,
		Bidder:    b.Bidder,
		Name:      b.Name,
		Amount:    b.Amount,
		AmountSui: suiString(b.Amount),
		EndTime:   formatTime(b.EndTime),
		MinBid:    b.MinBid,
		UpdatedAt: b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToBidAckResponse converts a bid acknowledgement for output
func ToBidAckResponse(a model.BidAck) BidAckResponse {
	return BidAckResponse{
		ListingID:  a.ListingID,
		Bidder:     a.Bidder,
		Amount:     a.Amount,
		AmountSui:  *suiString(&a.Amount),
		AcceptedAt: a.AcceptedAt.UTC().Format(time.RFC3339),
	}
}

// NewListingPage converts listings and derives the next cursor
func NewListingPage(listings []model.Listing) PageResponse[ListingResponse] {
	return newPage(listings, ToListingResponse, func(l model.Listing) string { return l.ID })
}

// NewBidPage converts bids and derives the next cursor
func NewBidPage(bids []model.Bid) PageResponse[BidResponse] {
	return newPage(bids, ToBidResponse, func(b model.Bid) string { return b.ID })
}

func newPage[M, R any](items []M, convert func(M) R, id func(M) string) PageResponse[R] {
	page := PageResponse[R]{Items: make([]R, 0, len(items))}
	for _, item := range items {
		page.Items = append(page.Items, convert(item))
	}
	if len(items) > 0 {
		page.Cursor = id(items[len(items)-1])
	}
	return page
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func suiString(mist *int64) *string {
	sui := model.MistToSui(mist)
	if sui == nil {
		return nil
	}
	s := sui.String()
	return &s
}

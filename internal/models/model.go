package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MistPerSui is the number of MIST in one SUI
const MistPerSui = 1_000_000_000

// Listing represents an auctionable item mirrored from the ledger.
// Numeric fields are nil when the ledger value could not be parsed.
type Listing struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	EndTime     *time.Time `json:"end_time"`
	MinBid      *int64     `json:"min_bid"`
	MaxBid      *int64     `json:"max_bid"`
	BidCount    int        `json:"bid_count"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Bid represents an offer object associated with a listing
type Bid struct {
	ID        string     `json:"id"`
	ListingID string     `json:"listing_id"`
	Bidder    string     `json:"bidder"`
	Name      string     `json:"name"`
	Amount    *int64     `json:"bid_amount"`
	EndTime   *time.Time `json:"end_time"`
	MinBid    *int64     `json:"min_bid"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BidAck acknowledges a bid request. The bid itself is settled on the ledger
// and reaches the store through the indexer.
type BidAck struct {
	ListingID  string    `json:"listing_id"`
	Bidder     string    `json:"bidder"`
	Amount     int64     `json:"amount"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// EventID identifies a ledger event and doubles as a pagination cursor
type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

// Cursor is the last processed event for one indexed module
type Cursor struct {
	Module    string    `json:"module"`
	EventID   EventID   `json:"event_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SortOrder is the direction of id-ordered pagination
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Page holds pagination parameters shared by listing and bid queries
type Page struct {
	Cursor string
	Limit  int
	Sort   SortOrder
}

// ListingFilter holds equality filters for listing queries. Nil fields are ignored.
type ListingFilter struct {
	Name        *string
	Description *string
	EndTime     *time.Time
	MinBid      *int64
	Page        Page
}

// BidFilter holds equality filters for bid queries. Nil fields are ignored.
type BidFilter struct {
	Name    *string
	Amount  *int64
	EndTime *time.Time
	MinBid  *int64
	Page    Page
}

// MistToSui converts a MIST amount into SUI. Returns nil for a nil amount.
func MistToSui(mist *int64) *decimal.Decimal {
	if mist == nil {
		return nil
	}
	d := decimal.NewFromInt(*mist).Div(decimal.NewFromInt(MistPerSui))
	return &d
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 { return &v }

// Time returns a pointer to t
func Time(t time.Time) *time.Time { return &t }

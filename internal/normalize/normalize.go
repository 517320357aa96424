// Package normalize turns raw ledger object fields into typed listing and bid records.
//
// Move u64 values arrive as JSON strings. A value that cannot be parsed does not
// reject the record: the field is left nil and its name is reported in Result.Malformed.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	model "auction-marketplace/internal/models"
)

// Fields is the content.fields map of a ledger object
type Fields map[string]json.RawMessage

// Result carries the names of numeric fields that failed to parse
type Result struct {
	Malformed []string
}

// OK reports whether every numeric field parsed
func (r Result) OK() bool { return len(r.Malformed) == 0 }

// Listing builds a listing record from the fields of a listing object
func Listing(fields Fields, now time.Time) (model.Listing, Result) {
	var res Result

	listing := model.Listing{
		ID:          objectID(fields["id"]),
		Owner:       str(fields["owner"]),
		Name:        str(fields["name"]),
		Description: str(fields["description"]),
		MinBid:      res.int64Field(fields, "minbid"),
		MaxBid:      res.int64Field(fields, "maxbid"),
		EndTime:     res.millisField(fields, "expiry"),
		BidCount:    arrayLen(fields["bids"]),
		UpdatedAt:   now.UTC(),
	}
	return listing, res
}

// Bid builds a bid record from the fields of a bid object
func Bid(fields Fields, now time.Time) (model.Bid, Result) {
	var res Result

	bid := model.Bid{
		ID:        objectID(fields["id"]),
		ListingID: str(fields["target"]),
		Bidder:    str(fields["owner"]),
		Name:      str(fields["name"]),
		Amount:    res.int64Field(fields, "bid"),
		MinBid:    res.int64Field(fields, "minBid"),
		EndTime:   res.millisField(fields, "expiry"),
		UpdatedAt: now.UTC(),
	}
	return bid, res
}

// ParseInt parses a Move integer that may be encoded as a JSON string or number
func ParseInt(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("normalize: missing value")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// bare JSON number
		s = string(raw)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("normalize: parse %q: %w", s, err)
	}
	return v, nil
}

func (r *Result) int64Field(fields Fields, name string) *int64 {
	v, err := ParseInt(fields[name])
	if err != nil {
		r.Malformed = append(r.Malformed, name)
		return nil
	}
	return &v
}

func (r *Result) millisField(fields Fields, name string) *time.Time {
	ms := r.int64Field(fields, name)
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

// objectID accepts both "0x.." and the UID form {"id": "0x.."}
func objectID(raw json.RawMessage) string {
	if s := str(raw); s != "" {
		return s
	}
	var uid struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &uid); err != nil || len(uid.ID) == 0 {
		return ""
	}
	return objectID(uid.ID)
}

func str(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func arrayLen(raw json.RawMessage) int {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0
	}
	return len(items)
}

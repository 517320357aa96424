// Package indexer mirrors listing and bid objects from the ledger into the market store.
//
// Each event names an object id. The object is fetched from the full node, normalized
// and upserted by id, so replaying an event is harmless and the store only ever holds
// the latest known state.
package indexer

import (
	"context"
	"fmt"

	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/sui"
)

//go:generate mockgen -source=source.go -destination=mock_source.go -package=indexer

// ObjectFetcher loads the current state of a ledger object
type ObjectFetcher interface {
	GetObject(ctx context.Context, objectID string) (*sui.ObjectData, error)
}

// EventSource pages through the events emitted by a module
type EventSource interface {
	QueryEvents(ctx context.Context, filter sui.EventFilter, cursor *model.EventID, limit int, descending bool) (*sui.EventPage, error)
}

// Kind selects which record an object is mirrored into
type Kind string

const (
	KindListing Kind = "listing"
	KindBid     Kind = "bid"
)

// idField is the parsedJson key that carries the object id for events of this kind
func (k Kind) idField() string {
	return string(k) + "_id"
}

// ParseKind validates a kind given on the command line
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindListing, KindBid:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown object kind %q, want %q or %q", s, KindListing, KindBid)
	}
}

package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/normalize"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/sui"
	"auction-marketplace/utils"
)

// SyncStats summarizes one batch of events
type SyncStats struct {
	Received  int
	Upserted  int
	Skipped   int // no object id, fetch failed or the object is gone
	Failed    int // store write failed
	Malformed int // records stored with at least one NULL numeric field
}

func (s *SyncStats) add(o SyncStats) {
	s.Received += o.Received
	s.Upserted += o.Upserted
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Malformed += o.Malformed
}

// Handler turns ledger events into upserts
type Handler struct {
	fetcher ObjectFetcher
	db      repository.MarketDB
	now     func() time.Time
}

// NewHandler creates a handler that reads objects through fetcher and writes to db
func NewHandler(fetcher ObjectFetcher, db repository.MarketDB) *Handler {
	return &Handler{fetcher: fetcher, db: db, now: time.Now}
}

// HandleListingEvents mirrors the listing object named by each event
func (h *Handler) HandleListingEvents(ctx context.Context, events []sui.Event, typePrefix string) (SyncStats, error) {
	return h.handle(ctx, KindListing, events, typePrefix)
}

// HandleBidEvents mirrors the bid object named by each event
func (h *Handler) HandleBidEvents(ctx context.Context, events []sui.Event, typePrefix string) (SyncStats, error) {
	return h.handle(ctx, KindBid, events, typePrefix)
}

// Handle dispatches events to the handler for kind
func (h *Handler) Handle(ctx context.Context, kind Kind, events []sui.Event, typePrefix string) (SyncStats, error) {
	switch kind {
	case KindListing:
		return h.HandleListingEvents(ctx, events, typePrefix)
	case KindBid:
		return h.HandleBidEvents(ctx, events, typePrefix)
	default:
		return SyncStats{}, fmt.Errorf("indexer: unknown kind %q", kind)
	}
}

// handle processes events in order. Per-event failures are logged and skipped;
// an event from another module aborts the batch, leaving earlier upserts in place.
func (h *Handler) handle(ctx context.Context, kind Kind, events []sui.Event, typePrefix string) (SyncStats, error) {
	var stats SyncStats

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Received++

		if !strings.HasPrefix(ev.Type, typePrefix) {
			eventsTotal.WithLabelValues(string(kind), outcomeRejected).Inc()
			return stats, fmt.Errorf("indexer: event %s has type %s, want prefix %s: %w",
				ev.ID.TxDigest, ev.Type, typePrefix, marketerrors.ErrUnexpectedEventType)
		}

		objectID, err := eventObjectID(ev, kind)
		if err != nil {
			utils.Warn("skipping event without object id", map[string]any{
				"kind": kind, "tx_digest": ev.ID.TxDigest, "event_seq": ev.ID.EventSeq, "error": err.Error(),
			})
			stats.Skipped++
			eventsTotal.WithLabelValues(string(kind), outcomeSkipped).Inc()
			continue
		}

		fields, err := h.fetch(ctx, objectID)
		if err != nil {
			utils.Warn("failed to fetch object", map[string]any{
				"kind": kind, "object_id": objectID, "error": err.Error(),
			})
			stats.Skipped++
			eventsTotal.WithLabelValues(string(kind), outcomeSkipped).Inc()
			continue
		}

		malformed, err := h.store(ctx, kind, objectID, fields)
		if malformed {
			stats.Malformed++
		}
		if err != nil {
			utils.Error("failed to upsert object", map[string]any{
				"kind": kind, "object_id": objectID, "error": err.Error(),
			})
			stats.Failed++
			eventsTotal.WithLabelValues(string(kind), outcomeFailed).Inc()
			continue
		}

		stats.Upserted++
		eventsTotal.WithLabelValues(string(kind), outcomeUpserted).Inc()
	}

	return stats, nil
}

// SyncObject fetches one object and upserts it, reporting every failure to the caller
func (h *Handler) SyncObject(ctx context.Context, kind Kind, objectID string) error {
	if _, err := ParseKind(string(kind)); err != nil {
		return fmt.Errorf("indexer: %w", err)
	}

	fields, err := h.fetch(ctx, objectID)
	if err != nil {
		return err
	}
	_, err = h.store(ctx, kind, objectID, fields)
	return err
}

func (h *Handler) fetch(ctx context.Context, objectID string) (normalize.Fields, error) {
	data, err := h.fetcher.GetObject(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("indexer: fetch %s: %w", objectID, err)
	}
	if data.Content == nil || data.Content.Fields == nil {
		return nil, fmt.Errorf("indexer: object %s has no move content", objectID)
	}
	return normalize.Fields(data.Content.Fields), nil
}

// store normalizes fields into a record of kind and upserts it.
// The object id the event named wins over a missing id field.
func (h *Handler) store(ctx context.Context, kind Kind, objectID string, fields normalize.Fields) (bool, error) {
	var res normalize.Result
	var err error

	switch kind {
	case KindListing:
		l, r := normalize.Listing(fields, h.now())
		if l.ID == "" {
			l.ID = objectID
		}
		res = r
		err = h.db.UpsertListing(ctx, l)
	case KindBid:
		b, r := normalize.Bid(fields, h.now())
		if b.ID == "" {
			b.ID = objectID
		}
		res = r
		err = h.db.UpsertBid(ctx, b)
	default:
		return false, fmt.Errorf("indexer: unknown kind %q", kind)
	}

	if !res.OK() {
		for _, field := range res.Malformed {
			malformedFieldsTotal.WithLabelValues(string(kind), field).Inc()
		}
		utils.Warn("stored object with unparseable numeric fields", map[string]any{
			"kind": kind, "object_id": objectID, "fields": res.Malformed,
		})
	}
	return !res.OK(), err
}

// eventObjectID reads listing_id or bid_id from the event payload
func eventObjectID(ev sui.Event, kind Kind) (string, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(ev.ParsedJSON, &payload); err != nil {
		return "", fmt.Errorf("decode parsedJson: %w", err)
	}

	raw, ok := payload[kind.idField()]
	if !ok {
		return "", fmt.Errorf("%s: %w", kind.idField(), marketerrors.ErrMissingObjectID)
	}

	var id string
	if err := json.Unmarshal(raw, &id); err != nil || id == "" {
		return "", errors.Join(fmt.Errorf("%s: %w", kind.idField(), marketerrors.ErrMissingObjectID), err)
	}
	return id, nil
}

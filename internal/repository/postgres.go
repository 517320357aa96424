package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/config"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo implements MarketDB on a pgx connection pool
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresPool opens and pings a pool configured from cfg
func NewPostgresPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// NewPostgresRepo wraps an open pool
func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

// Close releases the pool
func (r *PostgresRepo) Close() {
	r.pool.Close()
}

const listingColumns = `id, owner, name, description, end_time, min_bid, max_bid, bid_count, updated_at`

const bidColumns = `id, listing_id, bidder, name, bid_amount, end_time, min_bid, updated_at`

// UpsertListing inserts the listing or overwrites the mutable fields of the existing row
func (r *PostgresRepo) UpsertListing(ctx context.Context, l model.Listing) error {
	if l.ID == "" {
		return fmt.Errorf("upsert listing: %w - empty id", marketerrors.ErrInvalidListing)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			end_time = EXCLUDED.end_time,
			min_bid = EXCLUDED.min_bid,
			max_bid = EXCLUDED.max_bid,
			bid_count = EXCLUDED.bid_count,
			updated_at = EXCLUDED.updated_at
	`,
		l.ID, l.Owner, l.Name, l.Description, l.EndTime, l.MinBid, l.MaxBid, l.BidCount, updatedAt(l.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert listing %s: %w", l.ID, err)
	}
	return nil
}

// UpsertBid inserts the bid or overwrites the mutable fields of the existing row
func (r *PostgresRepo) UpsertBid(ctx context.Context, b model.Bid) error {
	if b.ID == "" {
		return fmt.Errorf("upsert bid: %w - empty id", marketerrors.ErrInvalidBid)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO bids (`+bidColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			listing_id = EXCLUDED.listing_id,
			bidder = EXCLUDED.bidder,
			name = EXCLUDED.name,
			bid_amount = EXCLUDED.bid_amount,
			end_time = EXCLUDED.end_time,
			min_bid = EXCLUDED.min_bid,
			updated_at = EXCLUDED.updated_at
	`,
		b.ID, b.ListingID, b.Bidder, b.Name, b.Amount, b.EndTime, b.MinBid, updatedAt(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert bid %s: %w", b.ID, err)
	}
	return nil
}

// GetListing returns a single listing
func (r *PostgresRepo) GetListing(ctx context.Context, id string) (model.Listing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if err != nil {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", id, err)
	}

	listing, err := pgx.CollectExactlyOneRow(rows, scanListing)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", id, marketerrors.ErrListingNotFound)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", id, err)
	}
	return listing, nil
}

// ListListings returns one page of listings matching every non-nil filter field
func (r *PostgresRepo) ListListings(ctx context.Context, f model.ListingFilter) ([]model.Listing, error) {
	var w where
	w.eq("name", f.Name)
	w.eq("description", f.Description)
	w.eq("end_time", f.EndTime)
	w.eq("min_bid", f.MinBid)

	query, args := w.page(`SELECT `+listingColumns+` FROM listings`, f.Page)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	listings, err := pgx.CollectRows(rows, scanListing)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// ActiveListings returns listings whose end time is after now, soonest first
func (r *PostgresRepo) ActiveListings(ctx context.Context, now time.Time) ([]model.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+` FROM listings
		WHERE end_time > $1
		ORDER BY end_time ASC, id ASC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("active listings: %w", err)
	}

	listings, err := pgx.CollectRows(rows, scanListing)
	if err != nil {
		return nil, fmt.Errorf("active listings: %w", err)
	}
	return listings, nil
}

// ListBids returns one page of bids matching every non-nil filter field
func (r *PostgresRepo) ListBids(ctx context.Context, f model.BidFilter) ([]model.Bid, error) {
	var w where
	w.eq("name", f.Name)
	w.eq("bid_amount", f.Amount)
	w.eq("end_time", f.EndTime)
	w.eq("min_bid", f.MinBid)

	query, args := w.page(`SELECT `+bidColumns+` FROM bids`, f.Page)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}

	bids, err := pgx.CollectRows(rows, scanBid)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return bids, nil
}

// GetCursor returns the last processed event for module
func (r *PostgresRepo) GetCursor(ctx context.Context, module string) (model.EventID, error) {
	var id model.EventID
	err := r.pool.QueryRow(ctx,
		`SELECT tx_digest, event_seq FROM event_cursors WHERE module = $1`, module,
	).Scan(&id.TxDigest, &id.EventSeq)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.EventID{}, fmt.Errorf("get cursor %s: %w", module, marketerrors.ErrCursorNotFound)
	}
	if err != nil {
		return model.EventID{}, fmt.Errorf("get cursor %s: %w", module, err)
	}
	return id, nil
}

// SaveCursor records the last processed event for module
func (r *PostgresRepo) SaveCursor(ctx context.Context, module string, id model.EventID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_cursors (module, tx_digest, event_seq, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (module) DO UPDATE SET
			tx_digest = EXCLUDED.tx_digest,
			event_seq = EXCLUDED.event_seq,
			updated_at = EXCLUDED.updated_at
	`, module, id.TxDigest, id.EventSeq)
	if err != nil {
		return fmt.Errorf("save cursor %s: %w", module, err)
	}
	return nil
}

func scanListing(row pgx.CollectableRow) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(&l.ID, &l.Owner, &l.Name, &l.Description, &l.EndTime, &l.MinBid, &l.MaxBid, &l.BidCount, &l.UpdatedAt)
	if l.EndTime != nil {
		*l.EndTime = l.EndTime.UTC()
	}
	l.UpdatedAt = l.UpdatedAt.UTC()
	return l, err
}

func scanBid(row pgx.CollectableRow) (model.Bid, error) {
	var b model.Bid
	err := row.Scan(&b.ID, &b.ListingID, &b.Bidder, &b.Name, &b.Amount, &b.EndTime, &b.MinBid, &b.UpdatedAt)
	if b.EndTime != nil {
		*b.EndTime = b.EndTime.UTC()
	}
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, err
}

func updatedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// where accumulates equality conditions with positional arguments.
// Column names only ever come from this package.
type where struct {
	conds []string
	args  []any
}

func (w *where) eq(column string, value any) {
	switch v := value.(type) {
	case *string:
		if v == nil {
			return
		}
		value = *v
	case *int64:
		if v == nil {
			return
		}
		value = *v
	case *time.Time:
		if v == nil {
			return
		}
		value = *v
	}
	w.args = append(w.args, value)
	w.conds = append(w.conds, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

// page appends the cursor condition, id ordering and limit to base
func (w *where) page(base string, p model.Page) (string, []any) {
	p = NormalizePage(p)

	order, cmp := "DESC", "<"
	if p.Sort == model.SortAsc {
		order, cmp = "ASC", ">"
	}
	if p.Cursor != "" {
		w.args = append(w.args, p.Cursor)
		w.conds = append(w.conds, fmt.Sprintf("id %s $%d", cmp, len(w.args)))
	}

	var sb strings.Builder
	sb.WriteString(base)
	if len(w.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(w.conds, " AND "))
	}
	w.args = append(w.args, p.Limit)
	fmt.Fprintf(&sb, " ORDER BY id %s LIMIT $%d", order, len(w.args))
	return sb.String(), w.args
}

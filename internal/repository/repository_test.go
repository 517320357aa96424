package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

// Helper to create a new Listing
func newListing(id, name string, minBid int64, endTime time.Time) model.Listing {
	return model.Listing{
		ID:          id,
		Owner:       "0xowner",
		Name:        name,
		Description: fmt.Sprintf("%s description", name),
		EndTime:     model.Time(endTime),
		MinBid:      model.Int64(minBid),
		UpdatedAt:   baseTime,
	}
}

// Helper to create a new Bid
func newBid(id, listingID string, amount int64) model.Bid {
	return model.Bid{
		ID:        id,
		ListingID: listingID,
		Bidder:    "0xbidder",
		Name:      "bid on " + listingID,
		Amount:    model.Int64(amount),
		EndTime:   model.Time(baseTime.Add(time.Hour)),
		MinBid:    model.Int64(10),
		UpdatedAt: baseTime,
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func listingIDs(ls []model.Listing) []string { return ids(ls, func(l model.Listing) string { return l.ID }) }
func bidIDs(bs []model.Bid) []string { return ids(bs, func(b model.Bid) string { return b.ID }) }

func TestMemoryRepo_UpsertListing(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_id", func(t *testing.T) {
		repo := NewMemoryRepo()
		err := repo.UpsertListing(ctx, model.Listing{Name: "nameless"})
		require.ErrorIs(t, err, marketerrors.ErrInvalidListing)
	})

	t.Run("same_id_twice_updates", func(t *testing.T) {
		repo := NewMemoryRepo()
		require.NoError(t, repo.UpsertListing(ctx, newListing("0x1", "guitar", 100, baseTime)))

		updated := newListing("0x1", "guitar", 100, baseTime)
		updated.MaxBid = model.Int64(250)
		updated.BidCount = 3
		require.NoError(t, repo.UpsertListing(ctx, updated))

		all, err := repo.ListListings(ctx, model.ListingFilter{})
		require.NoError(t, err)
		require.Len(t, all, 1)

		got, err := repo.GetListing(ctx, "0x1")
		require.NoError(t, err)
		require.Equal(t, updated, got)
	})

	t.Run("null_numeric_fields_are_stored", func(t *testing.T) {
		repo := NewMemoryRepo()
		l := model.Listing{ID: "0x2", Name: "broken"}
		require.NoError(t, repo.UpsertListing(ctx, l))

		got, err := repo.GetListing(ctx, "0x2")
		require.NoError(t, err)
		require.Nil(t, got.MinBid)
		require.Nil(t, got.EndTime)
	})
}

func TestMemoryRepo_UpsertBid(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	require.ErrorIs(t, repo.UpsertBid(ctx, model.Bid{}), marketerrors.ErrInvalidBid)

	// no foreign key: a bid may reference a listing the store has never seen
	require.NoError(t, repo.UpsertBid(ctx, newBid("0xb1", "0xunknown", 100)))
	require.NoError(t, repo.UpsertBid(ctx, newBid("0xb1", "0xunknown", 150)))

	bids, err := repo.ListBids(ctx, model.BidFilter{})
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, int64(150), *bids[0].Amount)
}

func TestMemoryRepo_GetListing_NotFound(t *testing.T) {
	_, err := NewMemoryRepo().GetListing(context.Background(), "0xmissing")
	require.ErrorIs(t, err, marketerrors.ErrListingNotFound)
}

func TestMemoryRepo_ListListings(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	for i, name := range []string{"guitar", "piano", "guitar", "drums", "violin"} {
		l := newListing(fmt.Sprintf("0x%d", i+1), name, int64(100*(i+1)), baseTime.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.UpsertListing(ctx, l))
	}

	str := func(s string) *string { return &s }

	tests := []struct {
		name   string
		filter model.ListingFilter
		want   []string
	}{
		{name: "no_filter_defaults_to_desc", filter: model.ListingFilter{}, want: []string{"0x5", "0x4", "0x3", "0x2", "0x1"}},
		{name: "ascending", filter: model.ListingFilter{Page: model.Page{Sort: model.SortAsc}}, want: []string{"0x1", "0x2", "0x3", "0x4", "0x5"}},
		{name: "unknown_sort_is_desc", filter: model.ListingFilter{Page: model.Page{Sort: "sideways"}}, want: []string{"0x5", "0x4", "0x3", "0x2", "0x1"}},
		{name: "by_name", filter: model.ListingFilter{Name: str("guitar"), Page: model.Page{Sort: model.SortAsc}}, want: []string{"0x1", "0x3"}},
		{name: "by_description", filter: model.ListingFilter{Description: str("piano description")}, want: []string{"0x2"}},
		{name: "by_min_bid", filter: model.ListingFilter{MinBid: model.Int64(400)}, want: []string{"0x4"}},
		{name: "by_end_time", filter: model.ListingFilter{EndTime: model.Time(baseTime.Add(2 * time.Hour))}, want: []string{"0x3"}},
		{name: "combined_no_match", filter: model.ListingFilter{Name: str("guitar"), MinBid: model.Int64(200)}, want: []string{}},
		{name: "limit", filter: model.ListingFilter{Page: model.Page{Limit: 2}}, want: []string{"0x5", "0x4"}},
		{name: "cursor_desc", filter: model.ListingFilter{Page: model.Page{Cursor: "0x4", Limit: 2}}, want: []string{"0x3", "0x2"}},
		{name: "cursor_asc", filter: model.ListingFilter{Page: model.Page{Cursor: "0x4", Sort: model.SortAsc}}, want: []string{"0x5"}},
		{name: "cursor_past_end", filter: model.ListingFilter{Page: model.Page{Cursor: "0x1"}}, want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.ListListings(ctx, tc.filter)
			require.NoError(t, err)
			require.Equal(t, tc.want, listingIDs(got))
		})
	}
}

func TestMemoryRepo_ListListings_LimitCapped(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	for i := 0; i < MaxLimit+10; i++ {
		require.NoError(t, repo.UpsertListing(ctx, newListing(fmt.Sprintf("0x%03d", i), "item", 1, baseTime)))
	}

	got, err := repo.ListListings(ctx, model.ListingFilter{Page: model.Page{Limit: 500}})
	require.NoError(t, err)
	require.Len(t, got, MaxLimit)
}

func TestMemoryRepo_ListBids(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.UpsertBid(ctx, newBid("0xb1", "0x1", 100)))
	require.NoError(t, repo.UpsertBid(ctx, newBid("0xb2", "0x1", 200)))
	require.NoError(t, repo.UpsertBid(ctx, newBid("0xb3", "0x2", 200)))

	tests := []struct {
		name   string
		filter model.BidFilter
		want   []string
	}{
		{name: "all", filter: model.BidFilter{}, want: []string{"0xb3", "0xb2", "0xb1"}},
		{name: "by_amount", filter: model.BidFilter{Amount: model.Int64(200), Page: model.Page{Sort: model.SortAsc}}, want: []string{"0xb2", "0xb3"}},
		{name: "by_min_bid", filter: model.BidFilter{MinBid: model.Int64(11)}, want: []string{}},
		{name: "cursor", filter: model.BidFilter{Page: model.Page{Cursor: "0xb1", Sort: model.SortAsc, Limit: 1}}, want: []string{"0xb2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.ListBids(ctx, tc.filter)
			require.NoError(t, err)
			require.Equal(t, tc.want, bidIDs(got))
		})
	}
}

func TestMemoryRepo_ActiveListings(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	now := baseTime
	require.NoError(t, repo.UpsertListing(ctx, newListing("0xlate", "late", 1, now.Add(3*time.Hour))))
	require.NoError(t, repo.UpsertListing(ctx, newListing("0xexpired", "expired", 1, now.Add(-time.Minute))))
	require.NoError(t, repo.UpsertListing(ctx, newListing("0xsoon", "soon", 1, now.Add(time.Minute))))
	require.NoError(t, repo.UpsertListing(ctx, newListing("0xnow", "ends now", 1, now)))
	require.NoError(t, repo.UpsertListing(ctx, model.Listing{ID: "0xnoend", Name: "no end"}))

	got, err := repo.ActiveListings(ctx, now)
	require.NoError(t, err)
	require.Equal(t, []string{"0xsoon", "0xlate"}, listingIDs(got))

	got, err = repo.ActiveListings(ctx, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryRepo_Cursors(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	_, err := repo.GetCursor(ctx, "listing")
	require.ErrorIs(t, err, marketerrors.ErrCursorNotFound)

	first := model.EventID{TxDigest: "d1", EventSeq: "0"}
	second := model.EventID{TxDigest: "d2", EventSeq: "3"}
	require.NoError(t, repo.SaveCursor(ctx, "listing", first))
	require.NoError(t, repo.SaveCursor(ctx, "listing", second))

	got, err := repo.GetCursor(ctx, "listing")
	require.NoError(t, err)
	require.Equal(t, second, got)

	_, err = repo.GetCursor(ctx, "bid")
	require.ErrorIs(t, err, marketerrors.ErrCursorNotFound)
}

// Concurrent upserts of overlapping ids must leave exactly one row per id
func TestMemoryRepo_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	const workers, distinct = 20, 10
	errs := make(chan error, workers*distinct)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < distinct; i++ {
				l := newListing(fmt.Sprintf("0x%02d", i), "item", int64(w), baseTime.Add(time.Hour))
				errs <- repo.UpsertListing(ctx, l)
				_, _ = repo.ActiveListings(ctx, baseTime)
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := repo.ListListings(ctx, model.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, all, distinct)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name string
		in   model.Page
		want model.Page
	}{
		{name: "zero", in: model.Page{}, want: model.Page{Limit: DefaultLimit, Sort: model.SortDesc}},
		{name: "negative_limit", in: model.Page{Limit: -1}, want: model.Page{Limit: DefaultLimit, Sort: model.SortDesc}},
		{name: "over_max", in: model.Page{Limit: MaxLimit + 1, Sort: model.SortAsc}, want: model.Page{Limit: DefaultLimit, Sort: model.SortAsc}},
		{name: "kept", in: model.Page{Cursor: "0x1", Limit: 7, Sort: model.SortAsc}, want: model.Page{Cursor: "0x1", Limit: 7, Sort: model.SortAsc}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizePage(tc.in))
		})
	}
}

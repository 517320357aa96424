package cache

import (
	"context"
	"testing"
	"time"

	"auction-marketplace/internal/config"
	model "auction-marketplace/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*ListingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewListingCache(client, ttl), mr
}

func TestListingCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestCache(t, time.Minute)

	_, ok, err := c.Get(ctx, "0x1")
	require.NoError(t, err)
	require.False(t, ok)

	end := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	listing := model.Listing{ID: "0x1", Name: "guitar", EndTime: &end, MinBid: model.Int64(100)}
	require.NoError(t, c.Set(ctx, listing))
	require.True(t, mr.Exists("auction:listing:0x1"))

	got, ok, err := c.Get(ctx, "0x1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "guitar", got.Name)
	require.Equal(t, int64(100), *got.MinBid)
	require.True(t, end.Equal(*got.EndTime))
	require.Nil(t, got.MaxBid)

	require.NoError(t, c.Delete(ctx, "0x1"))
	_, ok, err = c.Get(ctx, "0x1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListingCache_AddKeepsExistingEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestCache(t, time.Minute)

	added, err := c.Add(ctx, model.Listing{ID: "0x5", Name: "first"})
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, time.Minute, mr.TTL("auction:listing:0x5"))

	added, err = c.Add(ctx, model.Listing{ID: "0x5", Name: "second"})
	require.NoError(t, err)
	require.False(t, added)

	got, ok, err := c.Get(ctx, "0x5")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", got.Name)

	// Set always replaces
	require.NoError(t, c.Set(ctx, model.Listing{ID: "0x5", Name: "third"}))
	got, _, err = c.Get(ctx, "0x5")
	require.NoError(t, err)
	require.Equal(t, "third", got.Name)
}

func TestListingCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, model.Listing{ID: "0x2"}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "0x2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListingCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestCache(t, 0)

	require.NoError(t, mr.Set("auction:listing:0x3", "{not json"))
	_, ok, err := c.Get(ctx, "0x3")
	require.Error(t, err)
	require.False(t, ok)
}

func TestListingCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestCache(t, 0)
	mr.Close()

	_, _, err := c.Get(ctx, "0x4")
	require.Error(t, err)
	require.Error(t, c.Set(ctx, model.Listing{ID: "0x4"}))
	_, err = c.Add(ctx, model.Listing{ID: "0x4"})
	require.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.Error(t, err)

	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}

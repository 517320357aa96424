// Package cache keeps recently read listings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/internal/config"
	model "auction-marketplace/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auction:listing:"

// NewRedisClient connects to the configured Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// ListingCache stores listings as JSON under auction:listing:<id>
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a cache whose entries expire after ttl. A zero ttl never expires.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

// Get returns the cached listing and whether it was present
func (c *ListingCache) Get(ctx context.Context, id string) (model.Listing, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Listing{}, false, nil
	}
	if err != nil {
		return model.Listing{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var listing model.Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return model.Listing{}, false, fmt.Errorf("decode cached listing %s: %w", id, err)
	}
	return listing, true, nil
}

// Set stores listing
func (c *ListingCache) Set(ctx context.Context, listing model.Listing) error {
	raw, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("encode listing %s: %w", listing.ID, err)
	}
	if err := c.client.Set(ctx, keyPrefix+listing.ID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Add stores listing unless an entry already exists and reports whether it was stored
func (c *ListingCache) Add(ctx context.Context, listing model.Listing) (bool, error) {
	raw, err := json.Marshal(listing)
	if err != nil {
		return false, fmt.Errorf("encode listing %s: %w", listing.ID, err)
	}
	added, err := c.client.SetNX(ctx, keyPrefix+listing.ID, raw, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return added, nil
}

// Delete drops the cached listing, if any
func (c *ListingCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

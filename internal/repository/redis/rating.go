package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// RatingCache implements repository.RatingCache using Redis. Each instance
// owns one TTL domain (e.g. detail view vs list view); the key prefix keeps
// the domains independent.
type RatingCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRatingCache creates a Redis-backed rating cache for one TTL domain.
func NewRatingCache(client *redis.Client, prefix string, ttl time.Duration) *RatingCache {
	return &RatingCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get returns the cached serialized rating for a product.
func (c *RatingCache) Get(ctx context.Context, productID string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+productID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.NotFound("rating", productID)
		}
		return "", fmt.Errorf("redis get rating: %w", err)
	}
	return val, nil
}

// Set stores the serialized rating under the cache's TTL.
func (c *RatingCache) Set(ctx context.Context, productID, value string) error {
	if err := c.client.Set(ctx, c.prefix+productID, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set rating: %w", err)
	}
	return nil
}

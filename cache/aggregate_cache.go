package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"soundscore/model"
)

// AggregateCache keeps album aggregates in Redis so album reads skip the
// store on the hot path. Entries are written on every recompute and expire
// on their own after the TTL.
type AggregateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAggregateCache creates an aggregate cache over the given client.
func NewAggregateCache(client *redis.Client, ttl time.Duration) *AggregateCache {
	return &AggregateCache{client: client, ttl: ttl}
}

func aggregateKey(albumID string) string {
	return fmt.Sprintf("aggregate:%s", albumID)
}

// Get returns the cached aggregate and whether it was present.
func (c *AggregateCache) Get(ctx context.Context, albumID string) (*model.AlbumAggregate, bool, error) {
	data, err := c.client.Get(ctx, aggregateKey(albumID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read aggregate cache: %w", err)
	}

	var agg model.AlbumAggregate
	if err := json.Unmarshal([]byte(data), &agg); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached aggregate: %w", err)
	}
	return &agg, true, nil
}

// Set stores the aggregate with the configured TTL.
func (c *AggregateCache) Set(ctx context.Context, agg *model.AlbumAggregate) error {
	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to encode aggregate: %w", err)
	}
	if err := c.client.Set(ctx, aggregateKey(agg.AlbumID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write aggregate cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached aggregate for the album.
func (c *AggregateCache) Invalidate(ctx context.Context, albumID string) error {
	if err := c.client.Del(ctx, aggregateKey(albumID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate aggregate cache: %w", err)
	}
	return nil
}

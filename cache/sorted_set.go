package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// SortedSetCache provides sorted set operations backed by Redis, used for
// the per-recipient and per-staker account indexes where set order must
// follow a score (start_time for vesting schedules).
type SortedSetCache struct {
	client *redis.Client
	prefix string
}

// NewSortedSetCache creates a new sorted set cache with the given prefix.
func NewSortedSetCache(client *redis.Client, prefix string) *SortedSetCache {
	return &SortedSetCache{
		client: client,
		prefix: prefix,
	}
}

func (c *SortedSetCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Add adds a member with the given score. An existing member has its
// score updated.
func (c *SortedSetCache) Add(ctx context.Context, key string, score float64, member string) error {
	return c.client.ZAdd(ctx, c.key(key), redis.Z{
		Score:  score,
		Member: member,
	}).Err()
}

// AddBatch adds multiple members in one command.
func (c *SortedSetCache) AddBatch(ctx context.Context, key string, items []redis.Z) error {
	if len(items) == 0 {
		return nil
	}
	return c.client.ZAdd(ctx, c.key(key), items...).Err()
}

// Remove removes a member from the sorted set.
func (c *SortedSetCache) Remove(ctx context.Context, key string, member string) error {
	return c.client.ZRem(ctx, c.key(key), member).Err()
}

// GetAll returns all members with their scores, ordered by score
// ascending.
func (c *SortedSetCache) GetAll(ctx context.Context, key string) ([]redis.Z, error) {
	return c.client.ZRangeWithScores(ctx, c.key(key), 0, -1).Result()
}

// Count returns the number of members in the sorted set.
func (c *SortedSetCache) Count(ctx context.Context, key string) (int64, error) {
	return c.client.ZCard(ctx, c.key(key)).Result()
}

// Delete removes the entire sorted set.
func (c *SortedSetCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dom "github.com/karimahmed315/task-manager/internal/domain"

	"github.com/redis/go-redis/v9"
)

const monthKeyPrefix = "tasks:month:"

// RedisMonthCache memoizes per-(user, year, month) task lists in Redis.
// There is no TTL-based correctness: every mutation site must invalidate
// the affected month before the next read.
type RedisMonthCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisMonthCache returns a new RedisMonthCache. TTL is a safety net
// against leaked keys, not a consistency mechanism.
func NewRedisMonthCache(rdb *redis.Client, ttl time.Duration) *RedisMonthCache {
	return &RedisMonthCache{rdb: rdb, ttl: ttl}
}

func monthKey(userID int64, year int, month time.Month) string {
	return fmt.Sprintf("%s%d:%04d-%02d", monthKeyPrefix, userID, year, int(month))
}

// GetMonth returns the cached month list, or nil on a miss.
func (c *RedisMonthCache) GetMonth(ctx context.Context, userID int64, year int, month time.Month) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, monthKey(userID, year, month)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Task
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Task{}
	}
	return list, nil
}

// SetMonth stores a month list.
func (c *RedisMonthCache) SetMonth(ctx context.Context, userID int64, year int, month time.Month, list []dom.Task) error {
	if list == nil {
		// nil means miss on read; an empty month caches as [].
		list = []dom.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, monthKey(userID, year, month), b, c.ttl).Err()
}

// Invalidate evicts one (user, year, month) entry.
func (c *RedisMonthCache) Invalidate(ctx context.Context, userID int64, year int, month time.Month) error {
	return c.rdb.Del(ctx, monthKey(userID, year, month)).Err()
}

// InvalidateUser evicts every month entry for a user. Used by bulk
// operations whose affected months span the whole store.
func (c *RedisMonthCache) InvalidateUser(ctx context.Context, userID int64) error {
	pattern := fmt.Sprintf("%s%d:*", monthKeyPrefix, userID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

package ratestore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache is a side cache for rate lists on hot read paths. Implementations
// must treat every failure as a miss; the database remains the source of
// truth and a broken cache never fails a request.
type Cache interface {
	Get(ctx context.Context, key string) ([]SwapRate, bool)
	Set(ctx context.Context, key string, rates []SwapRate)
	Invalidate(ctx context.Context, keys ...string)
	Close() error
}

// LatestKey is the cache key for a currency's latest-rates list.
func LatestKey(currency string) string {
	return "rates:latest:" + strings.ToUpper(strings.TrimSpace(currency))
}

// RedisCache stores JSON-encoded rate lists in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis instance at addr and verifies it
// responds before returning. Entries expire after ttl.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached rates for the key, or false on a miss. Decode and
// transport errors count as misses.
func (c *RedisCache) Get(ctx context.Context, key string) ([]SwapRate, bool) {
	payload, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).WithField("key", key).Warn("rate cache read failed")
		}
		return nil, false
	}
	var rates []SwapRate
	if err := json.Unmarshal([]byte(payload), &rates); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("rate cache entry corrupt")
		return nil, false
	}
	return rates, true
}

// Set stores the rates under the key for the cache TTL. Failures are logged
// and dropped.
func (c *RedisCache) Set(ctx context.Context, key string, rates []SwapRate) {
	payload, err := json.Marshal(rates)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("rate cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("rate cache write failed")
	}
}

// Invalidate drops the given keys, typically after a write changed the rates
// behind them.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).Warn("rate cache invalidate failed")
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error { return c.client.Close() }

// NopCache satisfies Cache without storing anything. It stands in when no
// Redis address is configured.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string) ([]SwapRate, bool) { return nil, false }

func (NopCache) Set(ctx context.Context, key string, rates []SwapRate) {}

func (NopCache) Invalidate(ctx context.Context, keys ...string) {}

func (NopCache) Close() error { return nil }

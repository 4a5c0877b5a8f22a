package quotes

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var (
	_ Invalidator = (*MemoryCache)(nil)
	_ Invalidator = (*RedisCache)(nil)
)

// MemoryCache keeps quotes in process for ttl before asking the wrapped source again.
type MemoryCache struct {
	source Source
	cache  *cache.Cache
}

// NewMemoryCache wraps source with an in-process cache.
func NewMemoryCache(source Source, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (c *MemoryCache) Quote(ctx context.Context, code string) (Quote, error) {
	if cached, found := c.cache.Get(code); found {
		return cached.(Quote), nil
	}

	q, err := c.source.Quote(ctx, code)
	if err != nil {
		return Quote{}, err
	}
	c.cache.SetDefault(code, q)
	return q, nil
}

// Invalidate drops a cached quote.
func (c *MemoryCache) Invalidate(_ context.Context, code string) {
	c.cache.Delete(code)
}

// RedisCache is a read-through cache shared between server instances.
// Redis failures degrade to the wrapped source.
type RedisCache struct {
	source Source
	rdb    *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps source with a Redis read-through cache.
func NewRedisCache(source Source, rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{source: source, rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Quote(ctx context.Context, code string) (Quote, error) {
	data, err := c.rdb.Get(ctx, quoteKey(code)).Bytes()
	if err == nil {
		var q Quote
		if json.Unmarshal(data, &q) == nil {
			return q, nil
		}
	} else if err != redis.Nil {
		slog.WarnContext(ctx, "redis quote lookup failed", "code", code, "error", err)
	}

	q, err := c.source.Quote(ctx, code)
	if err != nil {
		return Quote{}, err
	}

	if data, err := json.Marshal(q); err == nil {
		if err := c.rdb.Set(ctx, quoteKey(code), data, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "redis quote store failed", "code", code, "error", err)
		}
	}
	return q, nil
}

// Invalidate drops a cached quote.
func (c *RedisCache) Invalidate(ctx context.Context, code string) {
	if err := c.rdb.Del(ctx, quoteKey(code)).Err(); err != nil {
		slog.WarnContext(ctx, "redis quote invalidation failed", "code", code, "error", err)
	}
}

func quoteKey(code string) string {
	return "quote:" + code
}

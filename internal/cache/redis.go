package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-api/internal/config"
	"todo-api/pkg/logger"
)

// Cache holds per-owner todo lists in Redis as raw JSON bytes, so cache
// hits skip marshalling entirely. A nil *Cache is valid and means the
// service runs db-only; every method tolerates a nil receiver.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. Returns nil (cache disabled) when the URL is bad
// or the server is unreachable.
func New(ctx context.Context, cfg *config.Config) *Cache {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
		return nil
	}
	opts.PoolSize = cfg.RedisPoolSize
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "Redis unreachable, cache disabled", "error", err)
		return nil
	}
	logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	return &Cache{client: client, ttl: cfg.CacheTTL}
}

func listKey(ownerID int64) string {
	return fmt.Sprintf("todos:user:%d", ownerID)
}

// GetList reads the owner's cached list. Returns (nil, false) on miss or error.
func (c *Cache) GetList(ctx context.Context, ownerID int64) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, listKey(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get failed", "error", err)
		return nil, false
	}
	return b, true
}

// SetListAsync writes the owner's list in the background so the response is
// never blocked on the cache.
func (c *Cache) SetListAsync(ownerID int64, b []byte) {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.client.Set(ctx, listKey(ownerID), b, c.ttl).Err(); err != nil {
			logger.Debug(ctx, "Redis set failed", "error", err)
		}
	}()
}

// Invalidate drops the owner's cached list so the next read goes to the DB.
func (c *Cache) Invalidate(ctx context.Context, ownerID int64) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, listKey(ownerID)).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate failed", "error", err)
	}
}

// Ping reports cache health. Nil cache is healthy by definition (disabled).
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

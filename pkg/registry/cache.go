package registry

import (
	"context"
	"errors"
	"time"

	"tenant-service/pkg/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Cache memoizes tenant key to schema lookups
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, schema string)
	Delete(ctx context.Context, key string)
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool) { return "", false }
func (NopCache) Set(context.Context, string, string) {}
func (NopCache) Delete(context.Context, string) {}

// NewRedisClient creates the redis client used for the resolution cache
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisCache stores resolutions in redis with a TTL. Redis failures are
// logged and treated as cache misses so resolution falls through to the database.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCache creates a cache with keys under prefix
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *RedisCache {
	if log == nil {
		log = zap.L()
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	schema, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Tenant cache read failed", zap.String("tenant", key), zap.Error(err))
		}
		return "", false
	}
	return schema, true
}

func (c *RedisCache) Set(ctx context.Context, key, schema string) {
	if err := c.client.Set(ctx, c.key(key), schema, c.ttl).Err(); err != nil {
		c.log.Warn("Tenant cache write failed", zap.String("tenant", key), zap.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.log.Warn("Tenant cache eviction failed", zap.String("tenant", key), zap.Error(err))
	}
}

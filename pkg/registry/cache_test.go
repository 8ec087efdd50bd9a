package registry

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRedisCache_UnavailableServerIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	cache := NewRedisCache(client, "tenant:", time.Minute, zap.NewNop())
	ctx := context.Background()

	cache.Set(ctx, "demo", "tenant_demo")
	_, ok := cache.Get(ctx, "demo")
	assert.False(t, ok)
	cache.Delete(ctx, "demo")
}

func TestNopCache(t *testing.T) {
	var c Cache = NopCache{}
	c.Set(context.Background(), "demo", "tenant_demo")
	_, ok := c.Get(context.Background(), "demo")
	assert.False(t, ok)
}

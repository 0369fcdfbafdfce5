package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/kidspeak/internal/cache"
)

func unreachable(t *testing.T) *cache.Cache {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return cache.NewCache(client, "test:")
}

func TestCache_UnreachableIsNotAMiss(t *testing.T) {
	t.Parallel()

	c := unreachable(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	if err == nil || errors.Is(err, cache.ErrMiss) {
		t.Errorf("Get err = %v, want a connection error", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err == nil {
		t.Error("Set: expected error")
	}
	if err := c.Ping(ctx); err == nil {
		t.Error("Ping: expected error")
	}
}

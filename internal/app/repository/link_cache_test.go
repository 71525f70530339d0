package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/snipr/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestLinkCache_SetAndGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewLinkCache(client)
	ctx := context.Background()

	expires := time.Date(2026, 10, 25, 23, 59, 59, 0, time.UTC)
	link := &model.Link{
		Code:             "abc",
		URL:              "https://example.com/a",
		ExpirationOption: model.ExpirationCustom,
		ExpiresAt:        &expires,
	}

	require.NoError(t, cache.Set(ctx, link, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(linkKey("abc")))

	got, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, link.URL, got.URL)
	assert.Equal(t, model.ExpirationCustom, got.ExpirationOption)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, expires.Equal(*got.ExpiresAt))
}

func TestLinkCache_Miss(t *testing.T) {
	_, client := setupTestRedis(t)
	cache := NewLinkCache(client)

	_, err := cache.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLinkCache_ExpiresWithTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewLinkCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &model.Link{Code: "abc", URL: "https://example.com"}, time.Second))
	mr.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLinkCache_SkipsNonPositiveTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewLinkCache(client)

	require.NoError(t, cache.Set(context.Background(), &model.Link{Code: "old"}, 0))
	assert.False(t, mr.Exists(linkKey("old")))
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sifan077/snipr/internal/app/model"
)

const linkKeyPrefix = "snipr:link:"

// ErrCacheMiss is returned when a code is not cached.
var ErrCacheMiss = errors.New("cache miss")

// LinkCache keeps resolved links close to the redirect handler.
type LinkCache interface {
	Get(ctx context.Context, code string) (*model.Link, error)
	Set(ctx context.Context, link *model.Link, ttl time.Duration) error
}

type redisLinkCache struct {
	client *redis.Client
}

// NewLinkCache returns a Redis-backed LinkCache.
func NewLinkCache(client *redis.Client) LinkCache {
	return &redisLinkCache{client: client}
}

func (c *redisLinkCache) Get(ctx context.Context, code string) (*model.Link, error) {
	data, err := c.client.Get(ctx, linkKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", code, err)
	}

	var link model.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", code, err)
	}
	return &link, nil
}

func (c *redisLinkCache) Set(ctx context.Context, link *model.Link, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", link.Code, err)
	}
	return c.client.Set(ctx, linkKey(link.Code), data, ttl).Err()
}

func linkKey(code string) string {
	return linkKeyPrefix + code
}

package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "masterdata:product:"

// Cache is a Redis read-through cache for single product lookups. Products
// are read on every sale line and low-stock report row, so lookups dominate
// writes by a wide margin.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Fetch loads the cached product or populates it using the loader.
func (c *Cache) Fetch(ctx context.Context, id int64, loader func(context.Context) (Product, error)) (Product, error) {
	if loader == nil {
		return Product{}, errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key := fmt.Sprintf("%s%d", cacheKeyPrefix, id)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var p Product
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
		// Corrupt entry, fall through to the loader.
	}

	p, err := loader(ctx)
	if err != nil {
		return Product{}, err
	}
	if encoded, err := json.Marshal(p); err == nil {
		c.client.Set(ctx, key, encoded, c.ttl)
	}
	return p, nil
}

// Invalidate drops the cached entry after a write.
func (c *Cache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, fmt.Sprintf("%s%d", cacheKeyPrefix, id))
}

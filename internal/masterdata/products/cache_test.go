package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchPopulatesOnMiss(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (Product, error) {
		loads++
		return Product{ID: 1, Name: "Widget", UnitPrice: decimal.NewFromInt(10)}, nil
	}

	p, err := cache.Fetch(ctx, 1, loader)
	require.NoError(t, err)
	require.Equal(t, "Widget", p.Name)
	require.Equal(t, 1, loads)

	// Second fetch is served from Redis.
	p, err = cache.Fetch(ctx, 1, loader)
	require.NoError(t, err)
	require.Equal(t, "Widget", p.Name)
	require.Equal(t, 1, loads)
}

func TestCacheFetchPropagatesLoaderError(t *testing.T) {
	cache := newTestCache(t)
	wantErr := errors.New("db down")

	_, err := cache.Fetch(context.Background(), 2, func(context.Context) (Product, error) {
		return Product{}, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestCacheInvalidate(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (Product, error) {
		loads++
		return Product{ID: 3, Name: "Gadget"}, nil
	}

	_, err := cache.Fetch(ctx, 3, loader)
	require.NoError(t, err)

	cache.Invalidate(ctx, 3)

	_, err = cache.Fetch(ctx, 3, loader)
	require.NoError(t, err)
	require.Equal(t, 2, loads)
}

func TestCacheNilClientFallsThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)

	loads := 0
	_, err := cache.Fetch(context.Background(), 4, func(context.Context) (Product, error) {
		loads++
		return Product{ID: 4}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, loads)
}

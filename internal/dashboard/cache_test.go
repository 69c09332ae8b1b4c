package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, 7, "dashboard", "stats", "day")
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return map[string]int{"n": loads}, nil
	}

	var got map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &got, loader))
	require.Equal(t, 1, loads)
	require.Equal(t, 1, got["n"])
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key1, err := cache.BuildKey(ctx, 7, "dashboard", "stats", "day")
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx, 7))

	key2, err := cache.BuildKey(ctx, 7, "dashboard", "stats", "day")
	require.NoError(t, err)
	require.NotEqual(t, key1, key2)
}

func TestCacheVersionsAreOwnerScoped(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, 8, "dashboard", "stats", "day")
	require.NoError(t, err)

	// Bumping one owner leaves another owner's keys intact.
	require.NoError(t, cache.Bump(ctx, 7))

	after, err := cache.BuildKey(ctx, 8, "dashboard", "stats", "day")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCacheNilIsPassthrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return map[string]int{"n": loads}, nil
	}

	var got map[string]int
	require.NoError(t, cache.FetchJSON(ctx, "k", &got, loader))
	require.NoError(t, cache.FetchJSON(ctx, "k", &got, loader))
	require.Equal(t, 2, loads)
	require.NoError(t, cache.Bump(ctx, 7))
}

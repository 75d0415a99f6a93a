package feed_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/feed"
)

type countingFetcher struct {
	mu    sync.Mutex
	calls int
	items []domain.FeedItem
}

func (f *countingFetcher) Fetch(context.Context, string, time.Time, time.Time, []string) []domain.FeedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.items
}

func setupCache(t *testing.T, next feed.Fetcher) (*feed.CachedSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return feed.NewCachedSource(next, client, 30*time.Minute, nil), mr
}

func TestCachedSource_HitSkipsFetcher(t *testing.T) {
	t.Parallel()

	next := &countingFetcher{items: []domain.FeedItem{
		{Title: "Bitcoin up", Content: "Up.", Link: "https://x.example/1", PublishDate: windowEnd.Add(-time.Hour)},
	}}
	cache, mr := setupCache(t, next)
	ctx := context.Background()

	first := cache.Fetch(ctx, "https://x.example/rss", windowStart, windowEnd, []string{"bitcoin"})
	second := cache.Fetch(ctx, "https://x.example/rss", windowStart, windowEnd, []string{"bitcoin"})

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)

	key := feed.CacheKey("https://x.example/rss", windowStart, windowEnd, []string{"bitcoin"})
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30*time.Minute, mr.TTL(key))

	mr.FastForward(31 * time.Minute)
	cache.Fetch(ctx, "https://x.example/rss", windowStart, windowEnd, []string{"bitcoin"})
	assert.Equal(t, 2, next.calls)
}

func TestCachedSource_EmptyResultsNotCached(t *testing.T) {
	t.Parallel()

	next := &countingFetcher{}
	cache, mr := setupCache(t, next)

	cache.Fetch(context.Background(), "https://x.example/rss", windowStart, windowEnd, nil)
	cache.Fetch(context.Background(), "https://x.example/rss", windowStart, windowEnd, nil)

	assert.Equal(t, 2, next.calls)
	assert.Empty(t, mr.Keys())
}

func TestCachedSource_RedisDownFallsThrough(t *testing.T) {
	t.Parallel()

	next := &countingFetcher{items: []domain.FeedItem{{Title: "Bitcoin"}}}
	cache, mr := setupCache(t, next)
	mr.Close()

	items := cache.Fetch(context.Background(), "https://x.example/rss", windowStart, windowEnd, nil)

	require.Len(t, items, 1)
	assert.Equal(t, 1, next.calls)
}

func TestCacheKey_DistinguishesRequests(t *testing.T) {
	t.Parallel()

	base := feed.CacheKey("u", windowStart, windowEnd, []string{"a"})

	assert.Equal(t, base, feed.CacheKey("u", windowStart.Add(10*time.Second), windowEnd, []string{"A"}))
	assert.NotEqual(t, base, feed.CacheKey("v", windowStart, windowEnd, []string{"a"}))
	assert.NotEqual(t, base, feed.CacheKey("u", windowStart, windowEnd, []string{"b"}))
	assert.Contains(t, base, "xposter:feed:")
}

package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
)

const cacheKeyPrefix = "xposter:feed:"

// Fetcher is the contract shared by Source and CachedSource.
type Fetcher interface {
	Fetch(ctx context.Context, url string, start, end time.Time, keywords []string) []domain.FeedItem
}

// CachedSource memoizes filtered feed results in Redis. Cache faults fall
// through to the wrapped fetcher.
type CachedSource struct {
	next   Fetcher
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewCachedSource wraps next with a Redis cache.
func NewCachedSource(next Fetcher, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedSource {
	if log == nil {
		log = logger.NewNop()
	}
	return &CachedSource{next: next, client: client, ttl: ttl, log: log}
}

// Fetch returns the cached result for the request or fetches and stores it.
// Empty results are not cached so a failing feed is retried next cycle.
func (c *CachedSource) Fetch(ctx context.Context, url string, start, end time.Time, keywords []string) []domain.FeedItem {
	key := CacheKey(url, start, end, keywords)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []domain.FeedItem
		if jsonErr := json.Unmarshal(raw, &items); jsonErr == nil {
			c.log.Debug("feed cache hit", logger.String("url", url))
			return items
		}
		c.log.Warn("feed cache entry corrupt", logger.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("feed cache read failed", logger.Error(err))
	}

	items := c.next.Fetch(ctx, url, start, end, keywords)
	if len(items) == 0 {
		return items
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return items
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("feed cache write failed", logger.Error(err))
	}
	return items
}

// CacheKey identifies a request. The window is truncated to the minute so
// reruns within the same minute share an entry.
func CacheKey(url string, start, end time.Time, keywords []string) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{0})
	h.Write([]byte(start.UTC().Truncate(time.Minute).Format(time.RFC3339)))
	h.Write([]byte{0})
	h.Write([]byte(end.UTC().Truncate(time.Minute).Format(time.RFC3339)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.Join(keywords, ","))))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))[:32]
}

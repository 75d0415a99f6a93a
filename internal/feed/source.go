package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/retry"
)

// maxFeedBytes caps the body read from a single feed.
const maxFeedBytes = 10 << 20

// Source downloads feeds over HTTP and filters their items.
type Source struct {
	client  *http.Client
	retry   retry.Config
	limiter *rate.Limiter
	log     logger.Logger
}

// NewSource returns a Source using client for downloads.
func NewSource(client *http.Client, log logger.Logger) *Source {
	if log == nil {
		log = logger.NewNop()
	}
	return &Source{
		client:  client,
		retry:   retry.DefaultConfig(),
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     log,
	}
}

// WithRetry overrides the retry policy used for downloads.
func (s *Source) WithRetry(cfg retry.Config) *Source {
	s.retry = cfg
	return s
}

// WithRateLimit caps outgoing feed requests at rps with the given burst.
// A non-positive rps removes the cap.
func (s *Source) WithRateLimit(rps float64, burst int) *Source {
	if rps <= 0 {
		s.limiter = rate.NewLimiter(rate.Inf, 0)
		return s
	}
	if burst <= 0 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return s
}

// Fetch returns the items of url published in [start, end] whose title
// contains one of keywords as a whole word. Any failure yields an empty
// result and a log line.
func (s *Source) Fetch(ctx context.Context, url string, start, end time.Time, keywords []string) []domain.FeedItem {
	body, err := s.download(ctx, url)
	if err != nil {
		s.log.Warn("feed download failed", logger.String("url", url), logger.Error(err))
		return []domain.FeedItem{}
	}

	items, err := ParseFeed(ctx, body)
	if err != nil {
		s.log.Warn("feed parse failed", logger.String("url", url), logger.Error(err))
		return []domain.FeedItem{}
	}

	return Filter(items, start, end, keywords)
}

// Filter keeps items inside [start, end] whose title matches a keyword.
func Filter(items []domain.FeedItem, start, end time.Time, keywords []string) []domain.FeedItem {
	out := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		if item.PublishDate.Before(start) || item.PublishDate.After(end) {
			continue
		}
		if !domain.ContainsAnyWord(item.Title, keywords) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *Source) download(ctx context.Context, url string) (string, error) {
	var body string
	err := retry.Do(ctx, s.retry, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("feed rate limit: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("feed new request: %w", err)
		}
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("feed do request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return &retry.Transient{Err: fmt.Errorf("feed status %d", resp.StatusCode)}
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("feed status %d", resp.StatusCode)
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
		if err != nil {
			return fmt.Errorf("feed read body: %w", err)
		}
		body = string(raw)
		return nil
	})
	return body, err
}

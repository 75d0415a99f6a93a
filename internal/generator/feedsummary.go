package generator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/artcava/XPoster/internal/channel"
	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/schedule"
)

const (
	// maxSummaryAttempts bounds the shrink-retry loop, first call included.
	maxSummaryAttempts = 3
	// firmReserve is the room left in the channel limit for the signature.
	firmReserve = 50
	// minSummaryTarget keeps the target usable on tiny channel limits.
	minSummaryTarget = 20
	// maxParallelFetches bounds concurrent feed downloads.
	maxParallelFetches = 4
)

// FeedSummaryConfig holds the feed-summary strategy inputs.
type FeedSummaryConfig struct {
	URLs         []string
	Lookback     time.Duration
	Hashtags     []domain.HashtagRule
	RequireImage bool
}

// FeedSummary summarizes recent keyword-matching feed items into a post
// with hashtags and an illustrative image.
type FeedSummary struct {
	base
	cfg        FeedSummaryConfig
	clock      schedule.Clock
	feeds      FeedSource
	summarizer Summarizer
	prompter   ImagePrompter
	images     ImageSynthesizer
}

// NewFeedSummary wires a feed-summary generator to its collaborators.
func NewFeedSummary(
	cfg FeedSummaryConfig,
	sender channel.Sender,
	clock schedule.Clock,
	feeds FeedSource,
	summarizer Summarizer,
	prompter ImagePrompter,
	images ImageSynthesizer,
	log logger.Logger,
) *FeedSummary {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	produceImage := cfg.RequireImage || (sender != nil && sender.RequiresImage())
	return &FeedSummary{
		base:       newBase("FeedSummary", produceImage, sender, log),
		cfg:        cfg,
		clock:      clock,
		feeds:      feeds,
		summarizer: summarizer,
		prompter:   prompter,
		images:     images,
	}
}

// Generate runs aggregate, summarize, annotate and illustrate.
func (g *FeedSummary) Generate(ctx context.Context) Result {
	end := g.clock.Now().UTC()
	start := end.Add(-g.cfg.Lookback)

	items := g.aggregate(ctx, start, end)
	if len(items) == 0 {
		return g.reject("no feed items matched",
			logger.Time("window_start", start),
			logger.Time("window_end", end),
		)
	}
	g.log.Info("feed items aggregated", logger.Int("items", len(items)))

	target := g.summaryTarget()
	summary, ok := g.summarize(ctx, joinContents(items), target)
	if !ok {
		return g.reject("summarization failed")
	}

	content := Annotate(summary, g.cfg.Hashtags)
	post := domain.NewPost(content, nil)

	prompt := strings.TrimSpace(g.prompter.ImagePrompt(ctx, summary))
	if prompt == "" {
		g.log.Warn("image prompt empty, falling back to summary")
		prompt = summary
	}

	image, err := g.synthesize(ctx, prompt)
	if err != nil {
		return g.degraded(post, fmt.Sprintf("image unavailable: %v", err))
	}
	if len(image) == 0 {
		return g.degraded(post, "image unavailable: empty payload")
	}

	post.Image = image
	return g.ready(post)
}

func (g *FeedSummary) summaryTarget() int {
	limit := 0
	if g.sender != nil {
		limit = g.sender.MaxMessageLength()
	}
	return max(limit-firmReserve, minSummaryTarget)
}

// aggregate fetches every feed concurrently and merges the matches. The
// result is deduplicated by link and ordered by publish date so the merged
// text does not depend on fetch order.
func (g *FeedSummary) aggregate(ctx context.Context, start, end time.Time) []domain.FeedItem {
	keywords := Keywords(g.cfg.Hashtags)
	results := make([][]domain.FeedItem, len(g.cfg.URLs))

	var eg errgroup.Group
	eg.SetLimit(maxParallelFetches)
	for i, url := range g.cfg.URLs {
		eg.Go(func() error {
			results[i] = g.feeds.Fetch(ctx, url, start, end, keywords)
			g.log.Debug("feed fetched", logger.String("url", url), logger.Int("matches", len(results[i])))
			return nil
		})
	}
	_ = eg.Wait()

	seen := make(map[string]bool)
	var merged []domain.FeedItem
	for _, batch := range results {
		for _, item := range batch {
			key := item.Link
			if key == "" {
				key = item.Title
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, item)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].PublishDate.Equal(merged[j].PublishDate) {
			return merged[i].PublishDate.Before(merged[j].PublishDate)
		}
		return merged[i].Title < merged[j].Title
	})
	return merged
}

// summarize asks for a summary at most maxSummaryAttempts times, feeding
// each over-length result back in. An empty result ends the cycle.
func (g *FeedSummary) summarize(ctx context.Context, text string, target int) (string, bool) {
	current := text
	for attempt := 1; attempt <= maxSummaryAttempts; attempt++ {
		out := strings.TrimSpace(g.summarizer.Summarize(ctx, current, target))
		if out == "" {
			g.log.Warn("summarizer returned nothing", logger.Int("attempt", attempt))
			return "", false
		}
		current = out

		length := utf8.RuneCountInString(current)
		if length <= target {
			g.log.Debug("summary accepted",
				logger.Int("attempt", attempt),
				logger.Int("length", length),
				logger.Int("target", target),
			)
			return current, true
		}
		g.log.Debug("summary over target",
			logger.Int("attempt", attempt),
			logger.Int("length", length),
			logger.Int("target", target),
		)
	}

	g.log.Warn("accepting over-length summary",
		logger.Int("length", utf8.RuneCountInString(current)),
		logger.Int("target", target),
	)
	return current, true
}

// synthesize converts a panicking synthesizer into an error.
func (g *FeedSummary) synthesize(ctx context.Context, prompt string) (image []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("synthesizer panic: %v", r)
		}
	}()
	return g.images.Synthesize(ctx, prompt)
}

func joinContents(items []domain.FeedItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		c := strings.TrimSpace(item.Content)
		if c == "" {
			c = strings.TrimSpace(item.Title)
		}
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n")
}

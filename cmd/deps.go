package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/artcava/XPoster/internal/ai"
	"github.com/artcava/XPoster/internal/channel"
	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/feed"
	"github.com/artcava/XPoster/internal/generator"
	"github.com/artcava/XPoster/internal/httpclient"
	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/metrics"
	"github.com/artcava/XPoster/internal/poster"
	"github.com/artcava/XPoster/internal/price"
	xredis "github.com/artcava/XPoster/internal/redis"
	"github.com/artcava/XPoster/internal/schedule"
	"github.com/artcava/XPoster/internal/storage"
)

// channelTimeout bounds every channel API call, image uploads included.
const channelTimeout = 60 * time.Second

// app holds the wired poster and the resources it owns.
type app struct {
	poster   *poster.Poster
	location *time.Location
	closers  []io.Closer
	log      logger.Logger
}

// Close releases owned resources.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn("failed to close resource", logger.Error(err))
		}
	}
}

// newApp wires every collaborator from cfg. m may be nil.
func newApp(ctx context.Context, cfg *config.Config, clock schedule.Clock, m *metrics.Metrics, log logger.Logger) (*app, error) {
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Schedule.Timezone, err)
	}

	table, err := schedule.FromConfig(cfg.Slots)
	if err != nil {
		return nil, fmt.Errorf("slot table: %w", err)
	}

	a := &app{location: loc, log: log}

	feeds := a.feedSource(ctx, cfg, log)

	aiClient := httpclient.New(cfg.AI.Timeout)
	claude := ai.NewClaude(ai.ClaudeConfig{
		APIKey:     cfg.AI.AnthropicAPIKey,
		Model:      cfg.AI.TextModel,
		HTTPClient: aiClient,
	}, log.With(logger.String("component", "claude")))
	images := ai.NewImageSynthesizer(ai.ImageConfig{
		APIKey:     cfg.AI.OpenAIAPIKey,
		Model:      cfg.AI.ImageModel,
		BaseURL:    cfg.AI.OpenAIBaseURL,
		HTTPClient: aiClient,
	})

	prices := price.NewOracle(httpclient.New(cfg.Price.Timeout), cfg.Price.BaseURL, log.With(logger.String("component", "price")))

	senders, err := newSenders(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("channels configured", logger.Strings("channels", channelNames(senders)))

	factory := generator.NewFactory(generator.Dependencies{
		Clock:      clock,
		Senders:    senders,
		Feeds:      feeds,
		Summarizer: claude,
		Prompter:   claude,
		Images:     images,
		Prices:     prices,
		Logger:     log,
		FeedSummary: generator.FeedSummaryConfig{
			URLs:         cfg.Feed.URLs,
			Lookback:     cfg.Feed.Lookback,
			Hashtags:     cfg.Feed.Hashtags,
			RequireImage: cfg.Feed.RequireImage,
		},
		PriceSymbol: cfg.Price.Symbol,
	})

	a.poster = poster.New(schedule.NewSelector(table, loc), factory, clock, m, log)
	return a, nil
}

// feedSource returns the HTTP feed source, wrapped in the Redis cache when
// enabled. A cache that cannot connect is skipped, not fatal.
func (a *app) feedSource(ctx context.Context, cfg *config.Config, log logger.Logger) feed.Fetcher {
	client := httpclient.WithUserAgent(httpclient.New(cfg.Feed.Timeout), cfg.Feed.UserAgent)
	source := feed.NewSource(client, log.With(logger.String("component", "feed"))).
		WithRateLimit(cfg.Feed.RateLimit, 1)

	if !cfg.Feed.CacheEnabled {
		return source
	}

	rdb, err := xredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("feed cache disabled", logger.Error(err))
		return source
	}
	a.closers = append(a.closers, rdb)
	return feed.NewCachedSource(source, rdb, cfg.Feed.CacheTTL, log.With(logger.String("component", "feed_cache")))
}

// newSenders registers a sender for every channel whose credentials are
// present.
func newSenders(ctx context.Context, cfg *config.Config, log logger.Logger) (*channel.Registry, error) {
	client := httpclient.New(channelTimeout)
	var senders []channel.Sender

	if cfg.Channels.X.Enabled() {
		senders = append(senders, channel.NewXSender(cfg.Channels.X, client, log))
	}
	if cfg.Channels.LinkedIn.Enabled() {
		senders = append(senders, channel.NewLinkedInSender(cfg.Channels.LinkedIn, client, log))
	}
	if cfg.Channels.Instagram.Enabled() {
		host, err := storage.NewS3ImageHost(ctx, cfg.Storage, client, log)
		if err != nil {
			log.Warn("instagram disabled: no image host", logger.Error(err))
		} else {
			senders = append(senders, channel.NewInstagramSender(cfg.Channels.Instagram, host, client, log))
		}
	}
	if cfg.Channels.Telegram.Enabled() {
		bot, err := channel.NewTelegramBot(cfg.Channels.Telegram, "", client)
		if err != nil {
			return nil, err
		}
		senders = append(senders, channel.NewTelegramSender(bot, cfg.Channels.Telegram.ChatID, log))
	}

	return channel.NewRegistry(senders...), nil
}

func channelNames(r *channel.Registry) []string {
	chs := r.Channels()
	names := make([]string, 0, len(chs))
	for _, ch := range chs {
		names = append(names, ch.String())
	}
	return names
}

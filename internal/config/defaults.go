package config

import (
	"time"

	"github.com/artcava/XPoster/internal/domain"
)

const (
	defaultCron          = "0 */2 * * *"
	defaultTimezone      = "UTC"
	defaultLookback      = 24 * time.Hour
	defaultFeedTimeout   = 15 * time.Second
	defaultFeedCacheTTL  = 30 * time.Minute
	defaultUserAgent     = "Mozilla/5.0 (compatible; XPoster/1.0)"
	defaultTextModel     = "claude-3-5-haiku-latest"
	defaultImageModel    = "dall-e-3"
	defaultAITimeout     = 90 * time.Second
	defaultPriceBaseURL  = "https://cryptoprices.cc"
	defaultPriceSymbol   = "BTC"
	defaultPriceTimeout  = 10 * time.Second
	defaultXAPIBase      = "https://api.twitter.com"
	defaultXUploadBase   = "https://upload.twitter.com"
	defaultLinkedInBase  = "https://api.linkedin.com"
	defaultInstagramBase = "https://graph.instagram.com/v20.0"
	defaultS3Region      = "us-east-1"
	defaultPresignExpiry = time.Hour
	defaultMetricsAddr   = ":9090"
)

// DefaultFeedURLs are the feeds aggregated when none are configured.
var DefaultFeedURLs = []string{
	"https://cointelegraph.com/rss/tag/bitcoin",
	"https://www.coindesk.com/arc/outboundfeeds/rss",
}

// DefaultHashtags is the term to hashtag mapping used when none is configured.
var DefaultHashtags = []domain.HashtagRule{
	{Term: "bitcoin", Hashtag: "#Bitcoin"},
	{Term: "btc", Hashtag: "#BTC"},
	{Term: "fed", Hashtag: "#FED"},
}

// DefaultSlots reproduces the production posting plan: feed summaries in the
// morning, valuations in the afternoon. Every other hour is NoSend.
var DefaultSlots = []SlotConfig{
	{Hour: 6, Strategy: "feedsummary", Channel: "linkedin"},
	{Hour: 8, Strategy: "feedsummary", Channel: "x"},
	{Hour: 14, Strategy: "valuation", Channel: "linkedin"},
	{Hour: 16, Strategy: "valuation", Channel: "x"},
}

// SetDefaults fills every unset field.
func SetDefaults(cfg *Config) {
	cfg.Logging.SetDefaults()

	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = defaultCron
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = defaultTimezone
	}
	if len(cfg.Slots) == 0 {
		cfg.Slots = append([]SlotConfig(nil), DefaultSlots...)
	}

	setFeedDefaults(&cfg.Feed)
	setAIDefaults(&cfg.AI)

	if cfg.Price.BaseURL == "" {
		cfg.Price.BaseURL = defaultPriceBaseURL
	}
	if cfg.Price.Symbol == "" {
		cfg.Price.Symbol = defaultPriceSymbol
	}
	if cfg.Price.Timeout == 0 {
		cfg.Price.Timeout = defaultPriceTimeout
	}

	setChannelDefaults(&cfg.Channels)

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = defaultS3Region
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = defaultPresignExpiry
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = defaultMetricsAddr
	}
}

func setFeedDefaults(c *FeedConfig) {
	if len(c.URLs) == 0 {
		c.URLs = append([]string(nil), DefaultFeedURLs...)
	}
	if c.Lookback == 0 {
		c.Lookback = defaultLookback
	}
	if len(c.Hashtags) == 0 {
		c.Hashtags = append([]domain.HashtagRule(nil), DefaultHashtags...)
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = defaultFeedTimeout
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = defaultFeedCacheTTL
	}
}

func setAIDefaults(c *AIConfig) {
	if c.TextModel == "" {
		c.TextModel = defaultTextModel
	}
	if c.ImageModel == "" {
		c.ImageModel = defaultImageModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultAITimeout
	}
}

func setChannelDefaults(c *ChannelsConfig) {
	if c.X.APIBaseURL == "" {
		c.X.APIBaseURL = defaultXAPIBase
	}
	if c.X.UploadBaseURL == "" {
		c.X.UploadBaseURL = defaultXUploadBase
	}
	if c.LinkedIn.BaseURL == "" {
		c.LinkedIn.BaseURL = defaultLinkedInBase
	}
	if c.Instagram.BaseURL == "" {
		c.Instagram.BaseURL = defaultInstagramBase
	}
}

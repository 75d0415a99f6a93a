package config

import (
	"time"

	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
)

// Config is the full XPoster configuration.
type Config struct {
	Logging  logger.Config  `yaml:"logging"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Slots    []SlotConfig   `yaml:"slots"`
	Feed     FeedConfig     `yaml:"feed"`
	AI       AIConfig       `yaml:"ai"`
	Price    PriceConfig    `yaml:"price"`
	Channels ChannelsConfig `yaml:"channels"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ScheduleConfig drives the serve command.
type ScheduleConfig struct {
	Cron     string `env:"XPOSTER_CRON"     yaml:"cron"`
	Timezone string `env:"XPOSTER_TIMEZONE" yaml:"timezone"`
}

// SlotConfig binds an hour of the day to a strategy and a channel.
type SlotConfig struct {
	Hour     int    `yaml:"hour"`
	Strategy string `yaml:"strategy"`
	Channel  string `yaml:"channel"`
}

// FeedConfig configures the feed-summary pipeline and its feed source.
type FeedConfig struct {
	URLs         []string             `env:"FEED_URLS"          yaml:"urls"`
	Lookback     time.Duration        `yaml:"lookback"`
	Hashtags     []domain.HashtagRule `yaml:"hashtags"`
	RequireImage bool                 `env:"FEED_REQUIRE_IMAGE" yaml:"require_image"`
	UserAgent    string               `yaml:"user_agent"`
	Timeout      time.Duration        `yaml:"timeout"`
	// RateLimit caps feed requests per second; zero means uncapped.
	RateLimit    float64              `yaml:"rate_limit"`
	CacheEnabled bool                 `env:"FEED_CACHE_ENABLED" yaml:"cache_enabled"`
	CacheTTL     time.Duration        `env:"FEED_CACHE_TTL"     yaml:"cache_ttl"`
}

// AIConfig configures the summarizer, image prompter and image synthesizer.
type AIConfig struct {
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY" yaml:"-"`
	TextModel       string        `env:"AI_TEXT_MODEL"     yaml:"text_model"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"    yaml:"-"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"   yaml:"openai_base_url"`
	ImageModel      string        `env:"AI_IMAGE_MODEL"    yaml:"image_model"`
	Timeout         time.Duration `yaml:"timeout"`
}

// PriceConfig configures the price oracle.
type PriceConfig struct {
	BaseURL string        `env:"PRICE_BASE_URL" yaml:"base_url"`
	Symbol  string        `yaml:"symbol"`
	Timeout time.Duration `yaml:"timeout"`
}

// ChannelsConfig holds per-channel credentials. A channel with missing
// credentials is left out of the sender registry.
type ChannelsConfig struct {
	X         XConfig         `yaml:"x"`
	LinkedIn  LinkedInConfig  `yaml:"linkedin"`
	Instagram InstagramConfig `yaml:"instagram"`
	Telegram  TelegramConfig  `yaml:"telegram"`
}

// XConfig holds OAuth 1.0a user-context credentials.
type XConfig struct {
	APIKey            string `env:"X_API_KEY"             yaml:"-"`
	APISecret         string `env:"X_API_SECRET"          yaml:"-"`
	AccessToken       string `env:"X_ACCESS_TOKEN"        yaml:"-"`
	AccessTokenSecret string `env:"X_ACCESS_TOKEN_SECRET" yaml:"-"`
	APIBaseURL        string `yaml:"api_base_url"`
	UploadBaseURL     string `yaml:"upload_base_url"`
}

// Enabled reports whether all credentials are present.
func (c *XConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// LinkedInConfig holds the member token and owner id.
type LinkedInConfig struct {
	AccessToken string `env:"IN_ACCESS_TOKEN" yaml:"-"`
	Owner       string `env:"IN_OWNER"        yaml:"owner"`
	BaseURL     string `yaml:"base_url"`
}

// Enabled reports whether all credentials are present.
func (c *LinkedInConfig) Enabled() bool {
	return c.AccessToken != "" && c.Owner != ""
}

// InstagramConfig holds the Graph API token and account id.
type InstagramConfig struct {
	AccessToken string `env:"IG_ACCESS_TOKEN" yaml:"-"`
	AccountID   string `env:"IG_ACCOUNT_ID"   yaml:"account_id"`
	BaseURL     string `yaml:"base_url"`
}

// Enabled reports whether all credentials are present.
func (c *InstagramConfig) Enabled() bool {
	return c.AccessToken != "" && c.AccountID != ""
}

// TelegramConfig holds the bot token and target chat.
type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN" yaml:"-"`
	ChatID   int64  `env:"TELEGRAM_CHAT_ID"   yaml:"chat_id"`
}

// Enabled reports whether all credentials are present.
func (c *TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// StorageConfig configures the S3-compatible image host used by Instagram.
type StorageConfig struct {
	Bucket        string        `env:"S3_BUCKET"     yaml:"bucket"`
	Prefix        string        `yaml:"prefix"`
	Region        string        `env:"S3_REGION"     yaml:"region"`
	Endpoint      string        `env:"S3_ENDPOINT"   yaml:"endpoint"`
	AccessKey     string        `env:"S3_ACCESS_KEY" yaml:"-"`
	SecretKey     string        `env:"S3_SECRET_KEY" yaml:"-"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// RedisConfig configures the feed cache connection.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"-"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

// MetricsConfig configures the Prometheus endpoint of the serve command.
type MetricsConfig struct {
	Address string `env:"METRICS_ADDRESS" yaml:"address"`
}

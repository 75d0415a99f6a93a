package config

import (
	"errors"
	"fmt"

	"github.com/artcava/XPoster/internal/domain"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const hoursPerDay = 24

// Validate checks the time-slot table and the sections the table depends on.
func (c *Config) Validate() error {
	if err := validateLogLevel(c.Logging.Level); err != nil {
		return err
	}

	seen := make(map[int]bool, len(c.Slots))
	needsFeeds := false

	for i, slot := range c.Slots {
		field := fmt.Sprintf("slots[%d]", i)

		if slot.Hour < 0 || slot.Hour >= hoursPerDay {
			return &ValidationError{Field: field + ".hour", Message: "must be between 0 and 23"}
		}
		if seen[slot.Hour] {
			return &ValidationError{Field: field + ".hour", Message: fmt.Sprintf("hour %d is mapped twice", slot.Hour)}
		}
		seen[slot.Hour] = true

		kind, err := domain.ParseStrategy(slot.Strategy)
		if err != nil {
			return &ValidationError{Field: field + ".strategy", Message: err.Error()}
		}

		ch, err := domain.ParseChannel(slot.Channel)
		if err != nil {
			return &ValidationError{Field: field + ".channel", Message: err.Error()}
		}

		if kind != domain.NoSend && ch == domain.ChannelNone {
			return &ValidationError{Field: field + ".channel", Message: "is required for strategy " + kind.String()}
		}

		if kind == domain.FeedSummary {
			needsFeeds = true
		}
	}

	if needsFeeds {
		if err := c.Feed.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (c *FeedConfig) validate() error {
	if len(c.URLs) == 0 {
		return &ValidationError{Field: "feed.urls", Message: "is required when a feedsummary slot exists"}
	}
	if c.Lookback <= 0 {
		return &ValidationError{Field: "feed.lookback", Message: "must be positive"}
	}
	for i, rule := range c.Hashtags {
		if rule.Term == "" || rule.Hashtag == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("feed.hashtags[%d]", i),
				Message: "term and hashtag are required",
			}
		}
	}
	return nil
}

func validateLogLevel(level string) error {
	switch level {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

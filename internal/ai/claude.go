// Package ai adapts hosted models to the summarizer, image prompter and
// image synthesizer the generators consume.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/artcava/XPoster/internal/logger"
)

const (
	summaryTemperature = 0.5
	promptTemperature  = 0.7
	promptMaxTokens    = 60
	// charsPerToken converts a character budget into a token budget.
	charsPerToken = 5
	minMaxTokens  = 64
)

const promptSystem = "You write prompts for an image model from short news summaries. " +
	"Produce one vivid English prompt that reflects the summary, includes a Bitcoin element such as a coin, " +
	"and asks for no text, letters or signage in the image. Keep it within content policy."

func summarySystem(maxLength int) string {
	return fmt.Sprintf("You summarize news concisely. The summary must stay under %d characters. "+
		"Reply with the summary only.", maxLength)
}

// ClaudeConfig configures the Anthropic client.
type ClaudeConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Claude implements summarization and image-prompt derivation over the
// Anthropic Messages API. Both operations return "" on failure.
type Claude struct {
	client anthropic.Client
	model  anthropic.Model
	log    logger.Logger
}

// NewClaude builds the client. The SDK's own retry handles 429 and 5xx.
func NewClaude(cfg ClaudeConfig, log logger.Logger) *Claude {
	if log == nil {
		log = logger.NewNop()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Claude{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(cfg.Model),
		log:    log,
	}
}

// Summarize asks for a summary of text under maxLength characters.
func (c *Claude) Summarize(ctx context.Context, text string, maxLength int) string {
	out, err := c.complete(ctx, summarySystem(maxLength),
		"Summarize this text in a few sentences.\n\n"+text,
		int64(max(maxLength/charsPerToken, minMaxTokens)),
		summaryTemperature,
	)
	if err != nil {
		c.log.Warn("summarize failed", logger.Error(err))
		return ""
	}
	return out
}

// ImagePrompt derives an image prompt from summary.
func (c *Claude) ImagePrompt(ctx context.Context, summary string) string {
	out, err := c.complete(ctx, promptSystem,
		"Write an image prompt for this summary:\n\n"+summary,
		promptMaxTokens,
		promptTemperature,
	)
	if err != nil {
		c.log.Warn("image prompt failed", logger.Error(err))
		return ""
	}
	return out
}

func (c *Claude) complete(ctx context.Context, system, user string, maxTokens int64, temperature float64) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// Package generator holds the content-generation strategies and the gate
// that decides whether a generated post may be transmitted.
package generator

import (
	"context"
	"strings"
	"time"

	"github.com/artcava/XPoster/internal/channel"
	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
)

// FeedSource returns the items of one feed published in [start, end] whose
// title matches a keyword. Failures yield an empty slice.
type FeedSource interface {
	Fetch(ctx context.Context, url string, start, end time.Time, keywords []string) []domain.FeedItem
}

// Summarizer condenses text toward maxLength characters. Failures yield "".
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength int) string
}

// ImagePrompter derives an image prompt from a summary. Failures yield "".
type ImagePrompter interface {
	ImagePrompt(ctx context.Context, summary string) string
}

// ImageSynthesizer renders an image for a prompt.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, prompt string) ([]byte, error)
}

// PriceOracle returns the market price of a symbol; <= 0 means unavailable.
type PriceOracle interface {
	Price(ctx context.Context, symbol string) float64
}

// Outcome classifies a generation cycle.
type Outcome int

const (
	// Rejected means no post was produced.
	Rejected Outcome = iota
	// Ready means a complete post was produced.
	Ready
	// Degraded means a post was produced with reduced content.
	Degraded
)

func (o Outcome) String() string {
	switch o {
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	default:
		return "rejected"
	}
}

// Result is the tagged outcome of Generate. Post is nil iff Outcome is Rejected.
type Result struct {
	Outcome Outcome
	Post    *domain.Post
	Reason  string
}

// Transmission is the outcome of the gate plus the sender call.
type Transmission struct {
	Sent bool
	// Blocked is true when the gate refused the post without calling the sender.
	Blocked bool
	Reason  string
}

// Generator is one strategy bound to one channel for one cycle.
type Generator interface {
	Name() string
	// SendIt starts true and turns false when the cycle is rejected.
	SendIt() bool
	ProduceImage() bool
	Generate(ctx context.Context) Result
	// Post runs the gate and, if it passes, the bound sender.
	Post(ctx context.Context, post *domain.Post) bool
	Transmit(ctx context.Context, post *domain.Post) Transmission
}

// Gate rejection reasons.
const (
	ReasonNotSendable  = "generator cannot send"
	ReasonImageMissing = "image required but absent"
	ReasonEmptyContent = "empty content"
	ReasonSendFailed   = "sender reported failure"
)

// base carries the state and gate shared by every strategy.
type base struct {
	name         string
	sendIt       bool
	produceImage bool
	sender       channel.Sender
	log          logger.Logger
}

func newBase(name string, produceImage bool, sender channel.Sender, log logger.Logger) base {
	if log == nil {
		log = logger.NewNop()
	}
	return base{
		name:         name,
		sendIt:       true,
		produceImage: produceImage,
		sender:       sender,
		log:          log.With(logger.Generator(name)),
	}
}

func (b *base) Name() string { return b.name }

func (b *base) SendIt() bool { return b.sendIt }

func (b *base) ProduceImage() bool { return b.produceImage }

func (b *base) reject(reason string, fields ...logger.Field) Result {
	b.sendIt = false
	b.log.Info("generation rejected", append(fields, logger.Reason(reason))...)
	return Result{Outcome: Rejected, Reason: reason}
}

func (b *base) ready(post *domain.Post) Result {
	return Result{Outcome: Ready, Post: post}
}

func (b *base) degraded(post *domain.Post, reason string) Result {
	b.log.Warn("generation degraded", logger.Reason(reason))
	return Result{Outcome: Degraded, Post: post, Reason: reason}
}

// Post reports whether the post was handed to the sender and accepted.
func (b *base) Post(ctx context.Context, post *domain.Post) bool {
	return b.Transmit(ctx, post).Sent
}

// Transmit evaluates the gate in order: sendable flag, required image,
// non-blank content. The sender is only called when all three pass.
func (b *base) Transmit(ctx context.Context, post *domain.Post) Transmission {
	switch {
	case !b.sendIt:
		return b.block(ReasonNotSendable)
	case post == nil:
		return b.block(ReasonEmptyContent)
	case b.produceImage && !post.HasImage():
		return b.block(ReasonImageMissing)
	case strings.TrimSpace(post.Content) == "":
		return b.block(ReasonEmptyContent)
	}

	if b.sender == nil {
		return b.block(ReasonNotSendable)
	}

	if !b.sender.Send(ctx, post) {
		b.log.Error("transmission failed",
			logger.String("channel", b.sender.Channel().String()),
			logger.Reason(ReasonSendFailed),
		)
		return Transmission{Reason: ReasonSendFailed}
	}

	b.log.Info("post transmitted",
		logger.String("channel", b.sender.Channel().String()),
		logger.Bool("with_image", post.HasImage()),
	)
	return Transmission{Sent: true}
}

func (b *base) block(reason string) Transmission {
	b.log.Info("transmission rejected", logger.Reason(reason))
	return Transmission{Blocked: true, Reason: reason}
}

// NoSend is the strategy for hours without a slot.
type NoSend struct {
	base
}

// NewNoSend returns a generator that never produces or sends anything.
func NewNoSend(log logger.Logger) *NoSend {
	g := &NoSend{base: newBase("NoSend", false, nil, log)}
	g.sendIt = false
	return g
}

// Generate always rejects.
func (g *NoSend) Generate(context.Context) Result {
	return g.reject("no strategy scheduled for this hour")
}

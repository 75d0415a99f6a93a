package generator

import (
	"fmt"

	"github.com/artcava/XPoster/internal/channel"
	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/schedule"
)

// SenderLookup resolves a channel to its sender.
type SenderLookup interface {
	Sender(ch domain.Channel) (channel.Sender, bool)
}

// Dependencies are the collaborators shared by every generator the factory
// builds.
type Dependencies struct {
	Clock      schedule.Clock
	Senders    SenderLookup
	Feeds      FeedSource
	Summarizer Summarizer
	Prompter   ImagePrompter
	Images     ImageSynthesizer
	Prices     PriceOracle
	Logger     logger.Logger

	FeedSummary FeedSummaryConfig
	// PriceSymbol is the market symbol compared by the valuation strategy.
	PriceSymbol string
}

// Factory builds a fresh generator per invocation, so SendIt never leaks
// between cycles.
type Factory struct {
	deps Dependencies
}

// NewFactory returns a factory bound to deps.
func NewFactory(deps Dependencies) *Factory {
	if deps.Clock == nil {
		deps.Clock = schedule.SystemClock
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	return &Factory{deps: deps}
}

// Build returns the generator for kind bound to the sender of ch.
func (f *Factory) Build(kind domain.StrategyKind, ch domain.Channel) (Generator, error) {
	if kind == domain.NoSend {
		return NewNoSend(f.deps.Logger), nil
	}

	sender, err := f.sender(ch)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.FeedSummary:
		return NewFeedSummary(
			f.deps.FeedSummary,
			sender,
			f.deps.Clock,
			f.deps.Feeds,
			f.deps.Summarizer,
			f.deps.Prompter,
			f.deps.Images,
			f.deps.Logger,
		), nil
	case domain.Valuation:
		return NewValuation(sender, f.deps.Clock, f.deps.Prices, f.deps.PriceSymbol, f.deps.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStrategy, kind)
	}
}

func (f *Factory) sender(ch domain.Channel) (channel.Sender, error) {
	if f.deps.Senders == nil {
		return nil, fmt.Errorf("%w: %s", channel.ErrNotConfigured, ch)
	}
	s, ok := f.deps.Senders.Sender(ch)
	if !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrNotConfigured, ch)
	}
	return s, nil
}

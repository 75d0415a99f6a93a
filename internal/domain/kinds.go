package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownStrategy is returned when a strategy name cannot be parsed.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrUnknownChannel is returned when a channel name cannot be parsed.
	ErrUnknownChannel = errors.New("unknown channel")
)

// StrategyKind selects the content-generation pipeline.
type StrategyKind int

const (
	NoSend StrategyKind = iota
	FeedSummary
	Valuation
)

var strategyNames = map[StrategyKind]string{
	NoSend:      "nosend",
	FeedSummary: "feedsummary",
	Valuation:   "valuation",
}

func (k StrategyKind) String() string {
	if name, ok := strategyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(k))
}

// ParseStrategy parses a case-insensitive strategy name. "powerlaw" is
// accepted as an alias for valuation and "feed" for feedsummary.
func ParseStrategy(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nosend", "none", "":
		return NoSend, nil
	case "feedsummary", "feed":
		return FeedSummary, nil
	case "valuation", "powerlaw":
		return Valuation, nil
	default:
		return NoSend, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Channel identifies a delivery target.
type Channel int

const (
	ChannelNone Channel = iota
	ChannelX
	ChannelLinkedIn
	ChannelInstagram
	ChannelTelegram
)

var channelNames = map[Channel]string{
	ChannelNone:      "none",
	ChannelX:         "x",
	ChannelLinkedIn:  "linkedin",
	ChannelInstagram: "instagram",
	ChannelTelegram:  "telegram",
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// ParseChannel parses a case-insensitive channel name.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return ChannelNone, nil
	case "x", "twitter":
		return ChannelX, nil
	case "linkedin", "in":
		return ChannelLinkedIn, nil
	case "instagram", "ig":
		return ChannelInstagram, nil
	case "telegram", "tg":
		return ChannelTelegram, nil
	default:
		return ChannelNone, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
}

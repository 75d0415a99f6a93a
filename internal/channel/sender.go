// Package channel implements the delivery targets a post can be sent to.
package channel

import (
	"context"
	"errors"
	"sort"

	"github.com/artcava/XPoster/internal/domain"
)

var (
	// ErrNotConfigured is returned when a slot names a channel whose
	// credentials are missing.
	ErrNotConfigured = errors.New("channel not configured")
	// ErrImageRequired is returned by senders that cannot post text only.
	ErrImageRequired = errors.New("channel requires an image")
)

// Sender transmits a post to one delivery target. Send reports failures as
// false and never panics on transport errors.
type Sender interface {
	Channel() domain.Channel
	// MaxMessageLength is the channel's character limit for the body.
	MaxMessageLength() int
	// RequiresImage reports whether text-only posts are impossible.
	RequiresImage() bool
	Send(ctx context.Context, post *domain.Post) bool
}

// Registry maps channels to their configured senders.
type Registry struct {
	senders map[domain.Channel]Sender
}

// NewRegistry returns a registry holding the given senders.
func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[domain.Channel]Sender, len(senders))}
	for _, s := range senders {
		r.senders[s.Channel()] = s
	}
	return r
}

// Sender returns the sender bound to ch.
func (r *Registry) Sender(ch domain.Channel) (Sender, bool) {
	s, ok := r.senders[ch]
	return s, ok
}

// Channels lists the configured channels in declaration order.
func (r *Registry) Channels() []domain.Channel {
	out := make([]domain.Channel, 0, len(r.senders))
	for ch := range r.senders {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

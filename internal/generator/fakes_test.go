package generator_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/artcava/XPoster/internal/channel"
	"github.com/artcava/XPoster/internal/domain"
)

type fakeSender struct {
	mu            sync.Mutex
	ch            domain.Channel
	maxLen        int
	requiresImage bool
	result        bool
	sent          []*domain.Post
}

func newFakeSender(ch domain.Channel, maxLen int) *fakeSender {
	return &fakeSender{ch: ch, maxLen: maxLen, result: true}
}

func (s *fakeSender) Channel() domain.Channel { return s.ch }
func (s *fakeSender) MaxMessageLength() int   { return s.maxLen }
func (s *fakeSender) RequiresImage() bool     { return s.requiresImage }

func (s *fakeSender) Send(_ context.Context, post *domain.Post) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, post)
	return s.result
}

func (s *fakeSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fetchCall struct {
	url        string
	start, end time.Time
	keywords   []string
}

type fakeFeeds struct {
	mu     sync.Mutex
	byURL  map[string][]domain.FeedItem
	called []fetchCall
}

func (f *fakeFeeds) Fetch(_ context.Context, url string, start, end time.Time, keywords []string) []domain.FeedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, fetchCall{url: url, start: start, end: end, keywords: keywords})
	return f.byURL[url]
}

// scriptedSummarizer returns its replies in order, repeating the last one.
type scriptedSummarizer struct {
	replies []string
	inputs  []string
	targets []int
}

func (s *scriptedSummarizer) Summarize(_ context.Context, text string, maxLength int) string {
	s.inputs = append(s.inputs, text)
	s.targets = append(s.targets, maxLength)
	i := min(len(s.inputs)-1, len(s.replies)-1)
	if i < 0 {
		return ""
	}
	return s.replies[i]
}

type fakePrompter struct {
	reply string
}

func (p *fakePrompter) ImagePrompt(context.Context, string) string { return p.reply }

type fakeImages struct {
	image  []byte
	err    error
	panics bool
	prompt string
}

func (f *fakeImages) Synthesize(_ context.Context, prompt string) ([]byte, error) {
	f.prompt = prompt
	if f.panics {
		panic("renderer crashed")
	}
	return f.image, f.err
}

type fakePrices struct {
	price  float64
	symbol string
}

func (p *fakePrices) Price(_ context.Context, symbol string) float64 {
	p.symbol = symbol
	return p.price
}

type fakeLookup map[domain.Channel]channel.Sender

func (l fakeLookup) Sender(ch domain.Channel) (channel.Sender, bool) {
	s, ok := l[ch]
	return s, ok
}

var errRender = errors.New("render failed")

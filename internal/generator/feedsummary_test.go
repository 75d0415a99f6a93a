package generator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/generator"
	"github.com/artcava/XPoster/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedNow = time.Date(2025, 7, 21, 8, 0, 0, 0, time.UTC)

var btcRules = []domain.HashtagRule{
	{Term: "bitcoin", Hashtag: "#Bitcoin"},
	{Term: "fed", Hashtag: "#FED"},
}

type feedFixture struct {
	sender     *fakeSender
	feeds      *fakeFeeds
	summarizer *scriptedSummarizer
	prompter   *fakePrompter
	images     *fakeImages
}

func newFeedFixture() *feedFixture {
	return &feedFixture{
		sender: newFakeSender(domain.ChannelX, 280),
		feeds: &fakeFeeds{byURL: map[string][]domain.FeedItem{
			"https://a.example/rss": {
				{Title: "Bitcoin climbs", Content: "Bitcoin climbed overnight.", Link: "https://a.example/1", PublishDate: feedNow.Add(-2 * time.Hour)},
			},
			"https://b.example/rss": {
				{Title: "Fed holds", Content: "The Fed held rates.", Link: "https://b.example/1", PublishDate: feedNow.Add(-5 * time.Hour)},
				{Title: "Bitcoin climbs", Content: "Bitcoin climbed overnight.", Link: "https://a.example/1", PublishDate: feedNow.Add(-2 * time.Hour)},
			},
		}},
		summarizer: &scriptedSummarizer{replies: []string{"bitcoin rose as the fed held and bitcoin miners cheered"}},
		prompter:   &fakePrompter{reply: "an orange coin over a skyline"},
		images:     &fakeImages{image: []byte("png-bytes")},
	}
}

func (f *feedFixture) build(cfg generator.FeedSummaryConfig) *generator.FeedSummary {
	if cfg.URLs == nil {
		cfg.URLs = []string{"https://a.example/rss", "https://b.example/rss"}
	}
	if cfg.Hashtags == nil {
		cfg.Hashtags = btcRules
	}
	return generator.NewFeedSummary(cfg, f.sender, schedule.FixedClock(feedNow), f.feeds, f.summarizer, f.prompter, f.images, nil)
}

func TestFeedSummary_Ready(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	g := f.build(generator.FeedSummaryConfig{})

	res := g.Generate(context.Background())

	require.Equal(t, generator.Ready, res.Outcome)
	require.NotNil(t, res.Post)
	assert.True(t, g.SendIt())
	assert.Equal(t, "#Bitcoin rose as the #FED held and bitcoin miners cheered", res.Post.Content)
	assert.Equal(t, []byte("png-bytes"), res.Post.Image)
	assert.Equal(t, domain.Firm, res.Post.Firm)
	assert.Equal(t, "an orange coin over a skyline", f.images.prompt)
}

func TestFeedSummary_AggregatesWindowAndDeduplicates(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	g := f.build(generator.FeedSummaryConfig{})

	g.Generate(context.Background())

	require.Len(t, f.feeds.called, 2)
	for _, call := range f.feeds.called {
		assert.Equal(t, feedNow, call.end)
		assert.Equal(t, feedNow.Add(-24*time.Hour), call.start)
		assert.Equal(t, []string{"bitcoin", "fed"}, call.keywords)
	}

	// Older item first, duplicate link dropped.
	require.Len(t, f.summarizer.inputs, 1)
	assert.Equal(t, "The Fed held rates.\nBitcoin climbed overnight.", f.summarizer.inputs[0])
}

func TestFeedSummary_NoItemsRejects(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.feeds.byURL = nil
	g := f.build(generator.FeedSummaryConfig{})

	res := g.Generate(context.Background())

	assert.Equal(t, generator.Rejected, res.Outcome)
	assert.Nil(t, res.Post)
	assert.False(t, g.SendIt())
	assert.Empty(t, f.summarizer.inputs)
}

func TestFeedSummary_TargetLeavesRoomForFirm(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		maxLen int
		target int
	}{
		{280, 230},
		{1200, 1150},
		{2200, 2150},
	}

	for _, tc := range testCases {
		f := newFeedFixture()
		f.sender.maxLen = tc.maxLen
		f.build(generator.FeedSummaryConfig{}).Generate(context.Background())

		require.NotEmpty(t, f.summarizer.targets)
		assert.Equal(t, tc.target, f.summarizer.targets[0])
	}
}

func TestFeedSummary_ShrinkRetryStopsAfterThreeAttempts(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("bitcoin ", 100)
	longer := strings.Repeat("bitcoin ", 90)
	longest := strings.Repeat("bitcoin ", 80)

	f := newFeedFixture()
	f.summarizer.replies = []string{long, longer, longest, "never requested"}
	g := f.build(generator.FeedSummaryConfig{})

	res := g.Generate(context.Background())

	require.Len(t, f.summarizer.inputs, 3)
	assert.Equal(t, strings.TrimSpace(long), f.summarizer.inputs[1], "second attempt shrinks the previous result")
	assert.Equal(t, strings.TrimSpace(longer), f.summarizer.inputs[2])
	require.NotNil(t, res.Post)
	assert.True(t, g.SendIt())
	assert.True(t, strings.HasPrefix(res.Post.Content, "#Bitcoin bitcoin"))
	assert.Greater(t, len(res.Post.Content), 230)
}

func TestFeedSummary_ShrinkRetryStopsWhenShortEnough(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.summarizer.replies = []string{strings.Repeat("x", 300), "short bitcoin note"}
	g := f.build(generator.FeedSummaryConfig{})

	res := g.Generate(context.Background())

	assert.Len(t, f.summarizer.inputs, 2)
	require.NotNil(t, res.Post)
	assert.Equal(t, "short #Bitcoin note", res.Post.Content)
}

func TestFeedSummary_EmptySummaryRejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		replies  []string
		attempts int
	}{
		{"first attempt", []string{"   "}, 1},
		{"after an over-length attempt", []string{strings.Repeat("y", 400), ""}, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFeedFixture()
			f.summarizer.replies = tc.replies
			g := f.build(generator.FeedSummaryConfig{})

			res := g.Generate(context.Background())

			assert.Equal(t, generator.Rejected, res.Outcome)
			assert.Nil(t, res.Post)
			assert.False(t, g.SendIt())
			assert.Len(t, f.summarizer.inputs, tc.attempts)
		})
	}
}

func TestFeedSummary_EmptyPromptFallsBackToSummary(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.prompter.reply = ""
	g := f.build(generator.FeedSummaryConfig{})

	res := g.Generate(context.Background())

	require.Equal(t, generator.Ready, res.Outcome)
	assert.Equal(t, "bitcoin rose as the fed held and bitcoin miners cheered", f.images.prompt)
}

func TestFeedSummary_ImageFailureDegrades(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		images *fakeImages
	}{
		{"error", &fakeImages{err: errRender}},
		{"panic", &fakeImages{panics: true}},
		{"empty", &fakeImages{image: []byte{}}},
		{"nil", &fakeImages{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFeedFixture()
			f.images = tc.images
			g := f.build(generator.FeedSummaryConfig{})

			res := g.Generate(context.Background())

			require.Equal(t, generator.Degraded, res.Outcome)
			require.NotNil(t, res.Post)
			assert.NotEmpty(t, res.Post.Content)
			assert.Nil(t, res.Post.Image)
			assert.True(t, g.SendIt())
		})
	}
}

func TestFeedSummary_DegradedPostIsBlockedOnlyWhenImageRequired(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.images = &fakeImages{err: errRender}
	g := f.build(generator.FeedSummaryConfig{})
	res := g.Generate(context.Background())
	require.NotNil(t, res.Post)
	assert.True(t, g.Post(context.Background(), res.Post))

	strict := newFeedFixture()
	strict.images = &fakeImages{err: errRender}
	gs := strict.build(generator.FeedSummaryConfig{RequireImage: true})
	res = gs.Generate(context.Background())
	require.NotNil(t, res.Post)

	tx := gs.Transmit(context.Background(), res.Post)
	assert.True(t, tx.Blocked)
	assert.Equal(t, generator.ReasonImageMissing, tx.Reason)
	assert.Zero(t, strict.sender.calls())
}

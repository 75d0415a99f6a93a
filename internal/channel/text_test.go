package channel_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/artcava/XPoster/internal/channel"
	"github.com/artcava/XPoster/internal/domain"
)

func TestComposeText(t *testing.T) {
	t.Parallel()

	short := domain.NewPost("Bitcoin up", nil)
	assert.Equal(t, "Bitcoin up"+domain.Firm, channel.ComposeText(short, 280))

	long := domain.NewPost(strings.Repeat("é", 400), nil)
	got := channel.ComposeText(long, 280)
	assert.Equal(t, 280, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"+domain.Firm))

	tiny := channel.ComposeText(long, 10)
	assert.Equal(t, 10, utf8.RuneCountInString(tiny))

	assert.Equal(t, long.Text(), channel.ComposeText(long, 0))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	x := channel.NewXSender(testXConfig("http://unused"), nil, nil)
	tg := channel.NewTelegramSender(&fakeBot{}, 1, nil)
	reg := channel.NewRegistry(tg, x)

	got, ok := reg.Sender(domain.ChannelX)
	assert.True(t, ok)
	assert.Same(t, x, got)

	_, ok = reg.Sender(domain.ChannelLinkedIn)
	assert.False(t, ok)

	assert.Equal(t, []domain.Channel{domain.ChannelX, domain.ChannelTelegram}, reg.Channels())
}

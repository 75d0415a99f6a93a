package channel

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
)

// TelegramMaxLength is the photo caption limit, the tighter of the two
// Telegram limits.
const TelegramMaxLength = 1024

// BotAPI is the subset of *tgbotapi.BotAPI the sender uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender posts to one chat through a bot.
type TelegramSender struct {
	bot    BotAPI
	chatID int64
	log    logger.Logger
}

// NewTelegramBot authenticates the bot token against endpoint, which
// defaults to the public Bot API.
func NewTelegramBot(cfg config.TelegramConfig, endpoint string, client *http.Client) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return bot, nil
}

// NewTelegramSender returns a sender posting to chatID.
func NewTelegramSender(bot BotAPI, chatID int64, log logger.Logger) *TelegramSender {
	if log == nil {
		log = logger.NewNop()
	}
	return &TelegramSender{
		bot:    bot,
		chatID: chatID,
		log:    log.With(logger.String("channel", domain.ChannelTelegram.String())),
	}
}

func (s *TelegramSender) Channel() domain.Channel { return domain.ChannelTelegram }

func (s *TelegramSender) MaxMessageLength() int { return TelegramMaxLength }

func (s *TelegramSender) RequiresImage() bool { return false }

// Send posts a captioned photo when an image exists, a text message otherwise.
func (s *TelegramSender) Send(_ context.Context, post *domain.Post) bool {
	text := ComposeText(post, TelegramMaxLength)

	var msg tgbotapi.Chattable
	if post.HasImage() {
		photo := tgbotapi.NewPhoto(s.chatID, tgbotapi.FileBytes{Name: "image.png", Bytes: post.Image})
		photo.Caption = text
		msg = photo
	} else {
		msg = tgbotapi.NewMessage(s.chatID, text)
	}

	sent, err := s.bot.Send(msg)
	if err != nil {
		s.log.Error("telegram send failed", logger.Error(err))
		return false
	}

	s.log.Info("telegram message sent", logger.Int("message_id", sent.MessageID))
	return true
}

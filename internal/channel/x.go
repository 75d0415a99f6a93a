package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"

	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
)

// XMaxLength is the tweet character limit.
const XMaxLength = 280

type xMediaUploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}

type xTweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type xTweetRequest struct {
	Text  string       `json:"text"`
	Media *xTweetMedia `json:"media,omitempty"`
}

type xTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// XSender posts tweets with OAuth 1.0a user-context credentials.
type XSender struct {
	client     *http.Client
	apiBase    string
	uploadBase string
	log        logger.Logger
}

// NewXSender signs every request made through base with the configured keys.
func NewXSender(cfg config.XConfig, base *http.Client, log logger.Logger) *XSender {
	if log == nil {
		log = logger.NewNop()
	}
	if base == nil {
		base = http.DefaultClient
	}

	oauthCfg := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)

	return &XSender{
		client:     oauthCfg.Client(ctx, token),
		apiBase:    strings.TrimRight(cfg.APIBaseURL, "/"),
		uploadBase: strings.TrimRight(cfg.UploadBaseURL, "/"),
		log:        log.With(logger.String("channel", domain.ChannelX.String())),
	}
}

func (s *XSender) Channel() domain.Channel { return domain.ChannelX }

func (s *XSender) MaxMessageLength() int { return XMaxLength }

func (s *XSender) RequiresImage() bool { return false }

// Send uploads the image when present and publishes the tweet.
func (s *XSender) Send(ctx context.Context, post *domain.Post) bool {
	tweet := xTweetRequest{Text: ComposeText(post, XMaxLength)}

	if post.HasImage() {
		mediaID, err := s.uploadMedia(ctx, post.Image)
		if err != nil {
			s.log.Error("media upload failed", logger.Error(err))
			return false
		}
		tweet.Media = &xTweetMedia{MediaIDs: []string{mediaID}}
	}

	var resp xTweetResponse
	if err := doJSON(ctx, s.client, http.MethodPost, s.apiBase+"/2/tweets", nil, tweet, &resp, "x create tweet"); err != nil {
		s.log.Error("tweet failed", logger.Error(err))
		return false
	}

	s.log.Info("tweet published", logger.String("id", resp.Data.ID))
	return true
}

func (s *XSender) uploadMedia(ctx context.Context, image []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("media", "image.png")
	if err != nil {
		return "", fmt.Errorf("x media form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("x media form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("x media form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadBase+"/1.1/media/upload.json", &body)
	if err != nil {
		return "", fmt.Errorf("x media upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp xMediaUploadResponse
	if err := do(s.client, req, &resp, "x media upload"); err != nil {
		return "", err
	}
	if resp.MediaIDString == "" {
		return "", errors.New("x media upload: empty media id")
	}
	return resp.MediaIDString, nil
}

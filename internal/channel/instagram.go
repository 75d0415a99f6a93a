package channel

import (
	"context"
	"net/http"
	"strings"

	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
)

// InstagramMaxLength is the caption limit.
const InstagramMaxLength = 2200

// ImageHost makes image bytes reachable at a public URL.
type ImageHost interface {
	Publish(ctx context.Context, image []byte) (string, error)
}

type instagramMediaRequest struct {
	ImageURL    string `json:"image_url"`
	Caption     string `json:"caption"`
	AccessToken string `json:"access_token"`
}

type instagramPublishRequest struct {
	CreationID  string `json:"creation_id"`
	AccessToken string `json:"access_token"`
}

type instagramIDResponse struct {
	ID string `json:"id"`
}

// InstagramSender publishes single-image posts through the Graph API. The
// API pulls the image from a URL, so images go through an ImageHost first.
type InstagramSender struct {
	client    *http.Client
	baseURL   string
	token     string
	accountID string
	images    ImageHost
	log       logger.Logger
}

// NewInstagramSender returns a sender publishing as cfg.AccountID.
func NewInstagramSender(cfg config.InstagramConfig, images ImageHost, client *http.Client, log logger.Logger) *InstagramSender {
	if log == nil {
		log = logger.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &InstagramSender{
		client:    client,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.AccessToken,
		accountID: cfg.AccountID,
		images:    images,
		log:       log.With(logger.String("channel", domain.ChannelInstagram.String())),
	}
}

func (s *InstagramSender) Channel() domain.Channel { return domain.ChannelInstagram }

func (s *InstagramSender) MaxMessageLength() int { return InstagramMaxLength }

func (s *InstagramSender) RequiresImage() bool { return true }

// Send hosts the image, creates a media container and publishes it.
func (s *InstagramSender) Send(ctx context.Context, post *domain.Post) bool {
	if !post.HasImage() {
		s.log.Warn("text-only post refused", logger.Error(ErrImageRequired))
		return false
	}

	caption := ComposeText(post, InstagramMaxLength)
	if caption != post.Text() {
		s.log.Warn("caption truncated", logger.Int("limit", InstagramMaxLength))
	}

	imageURL, err := s.images.Publish(ctx, post.Image)
	if err != nil {
		s.log.Error("image hosting failed", logger.Error(err))
		return false
	}

	var container instagramIDResponse
	mediaURL := s.baseURL + "/" + s.accountID + "/media"
	media := instagramMediaRequest{ImageURL: imageURL, Caption: caption, AccessToken: s.token}
	if err := doJSON(ctx, s.client, http.MethodPost, mediaURL, nil, media, &container, "instagram create media"); err != nil {
		s.log.Error("media container failed", logger.Error(err))
		return false
	}

	var published instagramIDResponse
	publishURL := s.baseURL + "/" + s.accountID + "/media_publish"
	publish := instagramPublishRequest{CreationID: container.ID, AccessToken: s.token}
	if err := doJSON(ctx, s.client, http.MethodPost, publishURL, nil, publish, &published, "instagram publish"); err != nil {
		s.log.Error("publish failed", logger.Error(err))
		return false
	}

	s.log.Info("media published", logger.String("id", published.ID))
	return true
}

package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/logger"
)

// LinkedInMaxLength is the share commentary limit used for summaries.
const LinkedInMaxLength = 1200

const (
	linkedInImageRecipe  = "urn:li:digitalmediaRecipe:feedshare-image"
	linkedInUploadKey    = "com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"
	linkedInPersonPrefix = "urn:li:person:"
)

type linkedInServiceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type linkedInRegisterUpload struct {
	Recipes              []string                      `json:"recipes"`
	Owner                string                        `json:"owner"`
	ServiceRelationships []linkedInServiceRelationship `json:"serviceRelationships"`
}

type linkedInRegisterUploadRequest struct {
	RegisterUploadRequest linkedInRegisterUpload `json:"registerUploadRequest"`
}

type linkedInRegisterUploadResponse struct {
	Value struct {
		UploadMechanism map[string]struct {
			UploadURL string `json:"uploadUrl"`
		} `json:"uploadMechanism"`
		Asset string `json:"asset"`
	} `json:"value"`
}

type linkedInShareMedia struct {
	Status string `json:"status"`
	Media  string `json:"media"`
}

type linkedInShareContent struct {
	ShareCommentary struct {
		Text string `json:"text"`
	} `json:"shareCommentary"`
	ShareMediaCategory string               `json:"shareMediaCategory"`
	Media              []linkedInShareMedia `json:"media,omitempty"`
}

type linkedInUGCPost struct {
	Author          string `json:"author"`
	LifecycleState  string `json:"lifecycleState"`
	SpecificContent struct {
		ShareContent linkedInShareContent `json:"com.linkedin.ugc.ShareContent"`
	} `json:"specificContent"`
	Visibility struct {
		MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
	} `json:"visibility"`
}

// LinkedInSender shares posts on a member feed through the UGC API.
type LinkedInSender struct {
	client  *http.Client
	baseURL string
	token   string
	owner   string
	log     logger.Logger
}

// NewLinkedInSender accepts either a bare member id or a full URN as owner.
func NewLinkedInSender(cfg config.LinkedInConfig, client *http.Client, log logger.Logger) *LinkedInSender {
	if log == nil {
		log = logger.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	owner := cfg.Owner
	if !strings.HasPrefix(owner, "urn:") {
		owner = linkedInPersonPrefix + owner
	}
	return &LinkedInSender{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		owner:   owner,
		log:     log.With(logger.String("channel", domain.ChannelLinkedIn.String())),
	}
}

func (s *LinkedInSender) Channel() domain.Channel { return domain.ChannelLinkedIn }

func (s *LinkedInSender) MaxMessageLength() int { return LinkedInMaxLength }

func (s *LinkedInSender) RequiresImage() bool { return false }

// Send registers and uploads the image when present, then creates the share.
func (s *LinkedInSender) Send(ctx context.Context, post *domain.Post) bool {
	var share linkedInUGCPost
	share.Author = s.owner
	share.LifecycleState = "PUBLISHED"
	share.Visibility.MemberNetworkVisibility = "PUBLIC"
	share.SpecificContent.ShareContent.ShareCommentary.Text = ComposeText(post, LinkedInMaxLength)
	share.SpecificContent.ShareContent.ShareMediaCategory = "NONE"

	if post.HasImage() {
		asset, err := s.uploadImage(ctx, post.Image)
		if err != nil {
			s.log.Error("image upload failed", logger.Error(err))
			return false
		}
		share.SpecificContent.ShareContent.ShareMediaCategory = "IMAGE"
		share.SpecificContent.ShareContent.Media = []linkedInShareMedia{{Status: "READY", Media: asset}}
	}

	if err := doJSON(ctx, s.client, http.MethodPost, s.baseURL+"/v2/ugcPosts", s.headers(), share, nil, "linkedin ugc post"); err != nil {
		s.log.Error("share failed", logger.Error(err))
		return false
	}

	s.log.Info("share published", logger.Bool("with_image", post.HasImage()))
	return true
}

func (s *LinkedInSender) uploadImage(ctx context.Context, image []byte) (string, error) {
	register := linkedInRegisterUploadRequest{RegisterUploadRequest: linkedInRegisterUpload{
		Recipes: []string{linkedInImageRecipe},
		Owner:   s.owner,
		ServiceRelationships: []linkedInServiceRelationship{
			{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
		},
	}}

	var registered linkedInRegisterUploadResponse
	url := s.baseURL + "/v2/assets?action=registerUpload"
	if err := doJSON(ctx, s.client, http.MethodPost, url, s.headers(), register, &registered, "linkedin register upload"); err != nil {
		return "", err
	}

	uploadURL := registered.Value.UploadMechanism[linkedInUploadKey].UploadURL
	if uploadURL == "" || registered.Value.Asset == "" {
		return "", errors.New("linkedin register upload: missing upload url or asset")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("linkedin upload image: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", http.DetectContentType(image))

	if err := do(s.client, req, nil, "linkedin upload image"); err != nil {
		return "", err
	}
	return registered.Value.Asset, nil
}

func (s *LinkedInSender) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+s.token)
	h.Set("X-Restli-Protocol-Version", "2.0.0")
	return h
}

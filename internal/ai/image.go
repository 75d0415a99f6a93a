package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// ErrNoImage is returned when the image API answers without image data.
var ErrNoImage = errors.New("image response carried no data")

// ImageConfig configures the image synthesis client.
type ImageConfig struct {
	APIKey string
	Model  string
	// BaseURL must include the API version path, e.g. https://api.openai.com/v1.
	BaseURL    string
	HTTPClient *http.Client
}

// ImageSynthesizer renders square images with an OpenAI image model.
type ImageSynthesizer struct {
	client *openai.Client
	model  string
}

// NewImageSynthesizer builds the client.
func NewImageSynthesizer(cfg ImageConfig) *ImageSynthesizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &ImageSynthesizer{client: openai.NewClientWithConfig(clientCfg), model: model}
}

// Synthesize returns the PNG bytes for prompt.
func (s *ImageSynthesizer) Synthesize(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          s.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}

	image, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return image, nil
}

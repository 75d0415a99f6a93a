// Package storage publishes generated images to S3-compatible object storage
// so that channels which only accept image URLs can reference them.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/logger"
)

const (
	defaultRegion        = "us-east-1"
	defaultPresignExpiry = time.Hour
)

// ErrBucketRequired is returned when no bucket is configured.
var ErrBucketRequired = errors.New("s3 bucket is required")

// S3ImageHost uploads images and hands out time-limited GET URLs.
type S3ImageHost struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	prefix        string
	expiry        time.Duration
	log           logger.Logger
}

// NewS3ImageHost builds the client from cfg. Explicit keys take precedence
// over the default credential chain. httpClient may be nil.
func NewS3ImageHost(ctx context.Context, cfg config.StorageConfig, httpClient *http.Client, log logger.Logger) (*S3ImageHost, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = defaultPresignExpiry
	}
	if log == nil {
		log = logger.NewNop()
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	if httpClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(httpClient))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	log.Info("image host initialized",
		logger.String("bucket", cfg.Bucket),
		logger.String("prefix", cfg.Prefix),
		logger.String("region", cfg.Region),
		logger.String("endpoint", cfg.Endpoint),
	)

	return &S3ImageHost{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		expiry:        cfg.PresignExpiry,
		log:           log,
	}, nil
}

// Publish stores image under a content-addressed key and returns a
// presigned GET URL for it.
func (h *S3ImageHost) Publish(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("publish empty image")
	}

	key := h.fullKey(ImageKey(image))

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(image),
		ContentLength: aws.Int64(int64(len(image))),
		ContentType:   aws.String(http.DetectContentType(image)),
	})
	if err != nil {
		return "", fmt.Errorf("put image %s: %w", key, err)
	}

	req, err := h.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(h.expiry))
	if err != nil {
		return "", fmt.Errorf("presign image %s: %w", key, err)
	}

	h.log.Debug("image published", logger.String("key", key), logger.Int("bytes", len(image)))
	return req.URL, nil
}

// ImageKey names an image by its content hash.
func ImageKey(image []byte) string {
	sum := sha256.Sum256(image)
	return "images/" + hex.EncodeToString(sum[:8]) + ".png"
}

func (h *S3ImageHost) fullKey(key string) string {
	if h.prefix == "" {
		return key
	}
	return strings.TrimSuffix(h.prefix, "/") + "/" + strings.TrimPrefix(key, "/")
}

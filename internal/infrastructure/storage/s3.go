// Package storage provides object storage for user-uploaded assets such as
// avatars. It speaks the S3 API so it works against AWS or any compatible
// store (MinIO in development).
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds the connection settings for the object store
type Config struct {
	Endpoint  string // empty for AWS proper
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from
}

// ObjectStore stores and serves binary objects in a single bucket
type ObjectStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
	log       *slog.Logger
}

// NewObjectStore creates an object store client from config
func NewObjectStore(ctx context.Context, cfg Config) (*ObjectStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Compatible stores generally want path-style addressing
			o.UsePathStyle = true
		}
	})

	return &ObjectStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		log:       slog.Default().With(slog.String("component", "storage")),
	}, nil
}

// Put uploads an object and returns the public URL it will be served from
func (s *ObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %q: %w", key, err)
	}

	s.log.Debug("uploaded object", slog.String("key", key))
	return s.publicURL + "/" + key, nil
}

// KeyForURL maps a public URL back to the object key it serves. The second
// return is false for URLs outside this store.
func (s *ObjectStore) KeyForURL(publicURL string) (string, bool) {
	key, ok := strings.CutPrefix(publicURL, s.publicURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// Delete removes an object; missing objects are not an error
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

package mediastore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sakif/devforum/internal/apperror"
)

// uploadTimeout bounds a single PutObject so a stalled storage backend can't
// hold a request open indefinitely.
const uploadTimeout = 30 * time.Second

// MinIOConfig carries the connection settings for a MinIO (or any
// S3-compatible) endpoint. PublicBaseURL is what gets prefixed onto object
// keys in returned URLs; when empty the endpoint and bucket are used.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// MinIO implements Store on top of a MinIO bucket.
type MinIO struct {
	mc      *minio.Client
	bucket  string
	baseURL string
}

// NewMinIO connects to the endpoint and makes sure the bucket exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("mediastore: endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("mediastore: access key and secret key are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("mediastore: bucket is required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("mediastore: creating client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("mediastore: checking bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("mediastore: creating bucket: %w", err)
		}
	}

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIO{mc: mc, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *MinIO) Store(ctx context.Context, kind string, data []byte, contentType string, ownerID int64) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectKey(kind, ownerID, contentType)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := s.mc.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", apperror.Upstream("media upload", err)
	}

	return s.baseURL + "/" + key, nil
}

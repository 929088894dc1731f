package exports

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"agency_crm_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultPresignTTL is used when no presign TTL is configured.
const DefaultPresignTTL = 15 * time.Minute

// Storage keeps rendered documents and hands out download links.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// MinIOStorage implements Storage on an S3-compatible bucket.
type MinIOStorage struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

// NewMinIOStorage creates a MinIO-backed Storage.
func NewMinIOStorage(cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ttl := cfg.GetMinIOPresignTTL()
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	return &MinIOStorage{client: client, bucket: cfg.GetMinIOBucketDocuments(), ttl: ttl}, nil
}

// EnsureBucketExists creates the documents bucket if it doesn't exist.
func (s *MinIOStorage) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Put uploads body under key.
func (s *MinIOStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a time-limited download URL that opens the PDF inline.
func (s *MinIOStorage) PresignGet(ctx context.Context, key string) (string, error) {
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return presigned.String(), nil
}

package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorageConfig describes the S3-compatible bucket reports are
// uploaded to during CI runs.
type ObjectStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ObjectStorage persists reports to an S3-compatible bucket.
type ObjectStorage struct {
	client *minio.Client
	bucket string
}

// NewObjectStorage creates an ObjectStorage from the given configuration.
func NewObjectStorage(cfg ObjectStorageConfig) (*ObjectStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object storage endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}
	return &ObjectStorage{client: client, bucket: cfg.Bucket}, nil
}

// Save implements Storage.
func (s *ObjectStorage) Save(ctx context.Context, key string, data []byte) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("object storage not initialized")
	}
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	return err
}

var _ Storage = (*ObjectStorage)(nil)

// Package storage resolves contact photo references kept in MinIO into
// short-lived URLs clients can fetch directly.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"callerid_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectScheme prefixes photo URIs that point at an object in the photo bucket.
const ObjectScheme = "s3://"

// defaultRegion is set explicitly so presigning never has to ask the server
// for the bucket location.
const defaultRegion = "us-east-1"

// PhotoResolver presigns photo object references.
type PhotoResolver struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

// NewPhotoResolver creates a resolver for the configured photo bucket.
func NewPhotoResolver(cfg config.MinIOConfig) (*PhotoResolver, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
		Region: defaultRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ttl := cfg.GetPhotoURLTTL()
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PhotoResolver{client: client, bucket: cfg.GetMinioBucketContactPhotos(), ttl: ttl}, nil
}

// EnsureBucket creates the photo bucket if it doesn't exist.
func (r *PhotoResolver) EnsureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{Region: defaultRegion}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}
	return nil
}

// IsObjectRef reports whether uri points into the photo bucket.
func IsObjectRef(uri string) bool {
	return strings.HasPrefix(uri, ObjectScheme) && len(uri) > len(ObjectScheme)
}

// Resolve returns a presigned GET URL for object references and uri
// unchanged for anything else.
func (r *PhotoResolver) Resolve(ctx context.Context, uri string) (string, error) {
	if r == nil || !IsObjectRef(uri) {
		return uri, nil
	}
	key := strings.TrimPrefix(uri, ObjectScheme)
	signed, err := r.client.PresignedGetObject(ctx, r.bucket, key, r.ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return signed.String(), nil
}

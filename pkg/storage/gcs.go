package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSStorage writes objects to Google Cloud Storage. Each logical bucket maps
// to a real GCS bucket; objects are expected to be publicly readable through
// the bucket's IAM policy.
type GCSStorage struct {
	client  *gcs.Client
	buckets map[Bucket]string
}

// NewGCSStorage creates a client using application default credentials.
func NewGCSStorage(ctx context.Context, imagesBucket, documentsBucket string) (*GCSStorage, error) {
	if imagesBucket == "" || documentsBucket == "" {
		return nil, errors.New("gcs storage requires both bucket names")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStorage{
		client: client,
		buckets: map[Bucket]string{
			BucketImages:    imagesBucket,
			BucketDocuments: documentsBucket,
		},
	}, nil
}

// Put uploads r to bucket/key and returns its public URL.
func (s *GCSStorage) Put(ctx context.Context, bucket Bucket, key string, r io.Reader, contentType string) (string, error) {
	if err := validateKey(bucket, key); err != nil {
		return "", err
	}
	w := s.client.Bucket(s.buckets[bucket]).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload object %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalise object %s/%s: %w", bucket, key, err)
	}
	return s.URL(bucket, key), nil
}

// Delete removes bucket/key; a missing object is not an error.
func (s *GCSStorage) Delete(ctx context.Context, bucket Bucket, key string) error {
	if err := validateKey(bucket, key); err != nil {
		return err
	}
	err := s.client.Bucket(s.buckets[bucket]).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// URL returns the public address of bucket/key.
func (s *GCSStorage) URL(bucket Bucket, key string) string {
	return gcsPublicHost + "/" + s.buckets[bucket] + "/" + escapeKey(key)
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage persists uploaded objects on disk, one directory per bucket.
// Objects are served back by the HTTP layer under publicBaseURL.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStorage ensures the bucket directories exist and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	for _, bucket := range []Bucket{BucketImages, BucketDocuments} {
		if err := os.MkdirAll(filepath.Join(baseDir, string(bucket)), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", bucket, err)
		}
	}
	return &LocalStorage{baseDir: baseDir, publicBaseURL: publicBaseURL}, nil
}

// Dir returns the root directory, which the router mounts as a static file tree.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// Put streams r into bucket/key and returns the public URL. The object only
// becomes visible once fully written.
func (s *LocalStorage) Put(ctx context.Context, bucket Bucket, key string, r io.Reader, _ string) (string, error) {
	if err := validateKey(bucket, key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := s.resolve(bucket, key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create object file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write object stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close object file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod object file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("commit object file: %w", err)
	}

	return s.URL(bucket, key), nil
}

// Delete removes a stored object if present.
func (s *LocalStorage) Delete(_ context.Context, bucket Bucket, key string) error {
	if err := validateKey(bucket, key); err != nil {
		return err
	}
	if err := os.Remove(s.resolve(bucket, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// URL returns the public address of bucket/key.
func (s *LocalStorage) URL(bucket Bucket, key string) string {
	return s.publicBaseURL + "/" + string(bucket) + "/" + escapeKey(key)
}

func (s *LocalStorage) resolve(bucket Bucket, key string) string {
	return filepath.Join(s.baseDir, string(bucket), filepath.FromSlash(key))
}

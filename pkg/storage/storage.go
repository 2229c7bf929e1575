package storage

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Bucket names the logical container an object is written to.
type Bucket string

const (
	BucketImages    Bucket = "images"
	BucketDocuments Bucket = "documents"
)

// ErrInvalidKey is returned for keys that would escape their bucket.
var ErrInvalidKey = errors.New("invalid object key")

func (b Bucket) valid() bool {
	return b == BucketImages || b == BucketDocuments
}

// validateKey rejects empty keys, absolute paths and parent traversal.
// Forward slashes are allowed so thumbnails can live under a prefix.
func validateKey(bucket Bucket, key string) error {
	if !bucket.valid() {
		return fmt.Errorf("%w: unknown bucket %q", ErrInvalidKey, bucket)
	}
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if cleaned := path.Clean(key); cleaned != key || strings.HasPrefix(cleaned, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// escapeKey percent-encodes each path segment of key for use in a URL.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

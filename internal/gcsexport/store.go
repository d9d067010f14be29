// Package gcsexport writes account statements to Google Cloud Storage.
package gcsexport

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/dvloznov/banking-coach/internal/domain"
)

// UploadTimeout bounds a single object write.
const UploadTimeout = 2 * time.Minute

// ObjectStore reads and writes objects in a bucket.
type ObjectStore interface {
	Put(ctx context.Context, bucket, object, contentType string, data []byte) error
	Get(ctx context.Context, bucket, object string) ([]byte, error)
}

// GCSStore implements ObjectStore with a shared storage client.
// It assumes Application Default Credentials are configured.
type GCSStore struct {
	client *storage.Client
}

// NewGCSStore creates the storage client.
func NewGCSStore(ctx context.Context) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStore: create storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

// Put implements ObjectStore.
func (s *GCSStore) Put(ctx context.Context, bucket, object, contentType string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("Put: write %s/%s: %w", bucket, object, err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("Put: finalize %s/%s: %w", bucket, object, err)
	}
	return nil
}

// Get implements ObjectStore.
func (s *GCSStore) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, fmt.Errorf("Get: %s/%s: %w", bucket, object, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: open %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Get: read %s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// URI returns the gs:// URI of an object.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// ParseURI splits a gs://bucket/object URI.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("ParseURI: %w: not a gs:// URI: %s", domain.ErrInvalidInput, uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("ParseURI: %w: no object path: %s", domain.ErrInvalidInput, uri)
	}
	return parts[0], parts[1], nil
}

// Filename returns the last path element of an object URI.
// e.g. "gs://bucket/statements/C0001/2024-05.json" → "2024-05.json"
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

var _ ObjectStore = (*GCSStore)(nil)

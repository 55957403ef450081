package faqsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
)

// maxObjectSize caps how much of a FAQ object is read.
const maxObjectSize = 16 << 20

// ObjectStore fetches FAQ batches from an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewObjectStore constructs the loader.
func NewObjectStore(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(endpoint), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	return &ObjectStore{client: client, bucket: bucket, logger: logger.With("component", "faqsource.objectstore")}, nil
}

// Fetch downloads the object at key and parses it as a FAQ batch.
func (s *ObjectStore) Fetch(ctx context.Context, key string) ([]faqindex.FAQRecord, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	if stat.Size > maxObjectSize {
		return nil, fmt.Errorf("object %s too large: %d bytes", key, stat.Size)
	}

	data, err := io.ReadAll(io.LimitReader(obj, maxObjectSize))
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	records, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", key, err)
	}
	s.logger.Info("faq batch fetched", "key", key, "records", len(records))
	return records, nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[0]
	}
	return raw
}

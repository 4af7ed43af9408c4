package catalogsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/learnmate/internal/infra/config"
)

const maxCatalogBytes = 4 << 20

// ObjectSource reads the catalog from S3 compatible object storage (R2, MinIO, S3).
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewObjectSource constructs the adapter. No request is made until Fetch.
func NewObjectSource(cfg config.ObjectStorageConfig, logger *slog.Logger) (*ObjectSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	useSSL := cfg.UseSSL || strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "https")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectSource{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
		logger: logger.With("component", "catalogsource.object"),
	}, nil
}

// Fetch downloads the catalog object.
func (s *ObjectSource) Fetch(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size > maxCatalogBytes {
		return nil, fmt.Errorf("catalog object is %d bytes, limit is %d", info.Size, maxCatalogBytes)
	}
	data, err := io.ReadAll(io.LimitReader(obj, maxCatalogBytes))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog object fetched", "bucket", s.bucket, "key", s.key, "etag", info.ETag)
	return data, nil
}

// Describe names the source for logs.
func (s *ObjectSource) Describe() string {
	return "object:" + s.bucket + "/" + s.key
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

var _ Source = (*ObjectSource)(nil)

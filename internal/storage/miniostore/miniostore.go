package miniostore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"portfolio_gallery/internal/config"
	"portfolio_gallery/internal/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const codeNoSuchKey = "NoSuchKey"

// Storage is an ObjectStore backed by a MinIO bucket.
type Storage struct {
	log           *slog.Logger
	client        *minio.Client
	bucket        string
	publicBaseURL string
	cacheControl  string
}

var _ storage.ObjectStore = (*Storage)(nil)

// New connects to MinIO and makes sure the configured bucket exists.
func New(ctx context.Context, log *slog.Logger, cfg config.ObjectStoreConfig) (*Storage, error) {
	const op = "storage.miniostore.New"

	s, err := newStorage(log, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func newStorage(log *slog.Logger, cfg config.ObjectStoreConfig) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Storage{
		log:           log,
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		cacheControl:  cfg.CacheControl,
	}, nil
}

func (s *Storage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if exists {
		return nil
	}

	s.log.Info("creating bucket", slog.String("bucket", s.bucket))

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Put uploads body under key unless the key already exists.
func (s *Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	const op = "storage.miniostore.Put"

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("%s: %w", op, storage.ErrObjectExists)
	}
	if minio.ToErrorResponse(err).Code != codeNoSuchKey {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: s.cacheControl,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	const op = "storage.miniostore.Remove"

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == codeNoSuchKey {
			return fmt.Errorf("%s: %w", op, storage.ErrObjectNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PublicURL returns the configured CDN/base URL for key, or the direct bucket URL.
func (s *Storage) PublicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + url.PathEscape(key)
	}

	endpoint := s.client.EndpointURL()
	return fmt.Sprintf("%s://%s/%s/%s", endpoint.Scheme, endpoint.Host, s.bucket, url.PathEscape(key))
}

func (s *Storage) ListKeys(ctx context.Context) ([]storage.ObjectInfo, error) {
	const op = "storage.miniostore.ListKeys"

	var objects []storage.ObjectInfo
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("%s: %w", op, object.Err)
		}
		objects = append(objects, storage.ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}

	return objects, nil
}

package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"portfolio_gallery/internal/config"
	"portfolio_gallery/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const defaultRegion = "us-east-1"

// Storage is an ObjectStore backed by an S3 (or S3 compatible) bucket.
type Storage struct {
	log          *slog.Logger
	client       *s3.Client
	bucket       string
	region       string
	endpoint     string
	publicBase   string
	cacheControl string
}

var _ storage.ObjectStore = (*Storage)(nil)

func New(ctx context.Context, log *slog.Logger, cfg config.ObjectStoreConfig) (*Storage, error) {
	const op = "storage.s3store.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	endpoint := endpointURL(cfg)

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	s := &Storage{
		log:          log,
		client:       client,
		bucket:       cfg.Bucket,
		region:       cfg.Region,
		endpoint:     endpoint,
		publicBase:   strings.TrimRight(cfg.PublicBaseURL, "/"),
		cacheControl: cfg.CacheControl,
	}

	if err := s.ensureBucketExists(ctx); err != nil {
		log.Warn("failed to ensure bucket exists", slog.String("bucket", cfg.Bucket), slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *Storage) ensureBucketExists(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	s.log.Info("creating bucket", slog.String("bucket", s.bucket))

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "" && s.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	_, err = s.client.CreateBucket(ctx, input)
	return err
}

// Put uploads body with a conditional write so an existing key is never replaced.
func (s *Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	const op = "storage.s3store.Put"

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		IfNoneMatch:   aws.String("*"),
	}
	if s.cacheControl != "" {
		input.CacheControl = aws.String(s.cacheControl)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		if isAPIError(err, "PreconditionFailed", "ConditionalRequestConflict") {
			return fmt.Errorf("%s: %w", op, storage.ErrObjectExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	const op = "storage.s3store.Remove"

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isAPIError(err, "NoSuchKey") {
			return fmt.Errorf("%s: %w", op, storage.ErrObjectNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) PublicURL(key string) string {
	escaped := url.PathEscape(key)

	switch {
	case s.publicBase != "":
		return s.publicBase + "/" + escaped
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucket, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
	}
}

func (s *Storage) ListKeys(ctx context.Context) ([]storage.ObjectInfo, error) {
	const op = "storage.s3store.ListKeys"

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})

	var objects []storage.ObjectInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, storage.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

func endpointURL(cfg config.ObjectStoreConfig) string {
	if cfg.Endpoint == "" || strings.Contains(cfg.Endpoint, "://") {
		return cfg.Endpoint
	}

	if cfg.UseSSL {
		return "https://" + cfg.Endpoint
	}
	return "http://" + cfg.Endpoint
}

func isAPIError(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}

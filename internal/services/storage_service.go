package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pupped/storefront/internal/config"
	"github.com/pupped/storefront/internal/models"
)

// MaxImageSize is the largest accepted upload (5MB)
const MaxImageSize = 5 * 1024 * 1024

// Object key prefixes
const (
	ProductImagePrefix = "products"
	ArticleImagePrefix = "articles"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ObjectClient is the subset of the S3 API used for image blobs
type ObjectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ImageUpload is an incoming image file
type ImageUpload struct {
	Body         io.Reader
	OriginalName string
	MimeType     string
	Size         int64
}

// StoredObject describes a blob written to the bucket
type StoredObject struct {
	Key          string
	OriginalName string
	MimeType     string
	Size         int64
}

// StorageService writes and removes image blobs in an S3-compatible bucket
// (Cloudflare R2 in production) and builds their public URLs.
type StorageService struct {
	client    ObjectClient
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// NewR2Client builds an S3 client pointed at the configured R2 endpoint
func NewR2Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// NewStorageService creates a new StorageService
func NewStorageService(client ObjectClient, bucket, publicURL string, logger *slog.Logger) *StorageService {
	return &StorageService{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// ValidateImage checks the type and size limits shared by every upload
func ValidateImage(mimeType string, size int64) error {
	if !allowedImageTypes[mimeType] {
		return fmt.Errorf("%w: %s. Allowed types: image/jpeg, image/png, image/webp", models.ErrInvalidFileType, mimeType)
	}
	if size > MaxImageSize {
		return fmt.Errorf("%w: maximum size is 5MB", models.ErrFileTooLarge)
	}
	return nil
}

// Upload validates the image and stores it under prefix/<uuid>.<ext>
func (s *StorageService) Upload(ctx context.Context, prefix string, img ImageUpload) (*StoredObject, error) {
	if err := ValidateImage(img.MimeType, img.Size); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s.%s", prefix, uuid.New().String(), extensionOf(img.OriginalName))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          img.Body,
		ContentType:   aws.String(img.MimeType),
		ContentLength: aws.Int64(img.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Info("image uploaded", slog.String("key", key), slog.Int64("size", img.Size))

	return &StoredObject{
		Key:          key,
		OriginalName: img.OriginalName,
		MimeType:     img.MimeType,
		Size:         img.Size,
	}, nil
}

// Delete removes an object from the bucket
func (s *StorageService) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// DeleteQuietly removes an object and only logs a failure
func (s *StorageService) DeleteQuietly(ctx context.Context, key string) {
	if err := s.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete image from storage",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// URL returns the public URL of an object key
func (s *StorageService) URL(key string) string {
	return s.publicURL + "/" + key
}

func extensionOf(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return "jpg"
	}
	return strings.ToLower(ext)
}

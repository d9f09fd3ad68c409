// Package imagestore archives captured receipt photos in S3-compatible object storage
// (AWS S3, Cloudflare R2, MinIO).
package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/gana36/billbeam/internal/extract"
)

// Store archives receipt images and returns the object key.
type Store interface {
	Put(ctx context.Context, userID string, img extract.Image) (string, error)
}

// Config selects the bucket and, for non-AWS providers, the endpoint.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // e.g. https://<account>.r2.cloudflarestorage.com; empty for AWS
	AccessKey string
	SecretKey string
}

// S3Store writes images to a bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

// NewS3Store builds a client from cfg. Static keys are used when set; otherwise the
// default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			// R2 and MinIO reject the default CRC32 trailers on PutObject.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

// Put uploads the image under receipts/<user>/<date>/<uuid><ext>.
func (s *S3Store) Put(ctx context.Context, userID string, img extract.Image) (string, error) {
	key := objectKey(userID, s.now(), img)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.MIMEType),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload receipt image: %w", err)
	}
	return key, nil
}

func objectKey(userID string, now time.Time, img extract.Image) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("receipts/%s/%s/%s%s", userID, now.UTC().Format("2006-01-02"), uuid.NewString(), img.Extension())
}

// Discard is used when no bucket is configured.
type Discard struct{}

func (Discard) Put(context.Context, string, extract.Image) (string, error) { return "", nil }

package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used for photo uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage stores ID photos as objects in an S3 (or S3-compatible) bucket.
// The object key is returned as the file id.
type S3Storage struct {
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Storage loads AWS configuration and creates the S3 backend.
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required for s3 photo storage")
	}
	region := cfg.S3Region
	if region == "" {
		region = "ap-northeast-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StorageWithClient(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

// NewS3StorageWithClient wires an existing client, mainly for tests.
func NewS3StorageWithClient(client S3API, bucket, prefix string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (s *S3Storage) UploadPhoto(ctx context.Context, photo Photo) (string, error) {
	data, err := photo.Decode()
	if err != nil {
		return "", err
	}

	name := photo.FileName
	if name == "" {
		name = fmt.Sprintf("%s_ID_%d.jpg", photo.RentalID, s.now().UnixMilli())
	}
	key := path.Join(s.prefix, s.now().UTC().Format("2006/01/02"), path.Base(name))

	logger.ExternalServiceCall("s3", "PutObject", "bucket", s.bucket, "key", key)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(photo.ContentType()),
		Metadata:    map[string]string{"rental-id": photo.RentalID},
	})
	logger.ExternalServiceResult("s3", "PutObject", err, "key", key)
	if err != nil {
		return "", apperr.Upstream(http.StatusBadGateway, photoUploadTitle, "Failed to upload photo to object storage").Wrap(err)
	}
	return key, nil
}

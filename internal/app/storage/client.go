/*
Package storage keeps the store snapshot in an S3-compatible bucket.

S3Sink implements store.Sink: the snapshot is one object, fetched whole at startup
and replaced whole on every save.
*/
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"meetassist/internal/app/store"
	"meetassist/internal/pkg/logx"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// S3Sink reads and writes the snapshot object.
type S3Sink struct {
	cfg      ServiceConfig
	key      string
	s3Client *s3.Client
	uploader *manager.Uploader
	logger   zerolog.Logger
}

var _ store.Sink = (*S3Sink)(nil)

// NewS3Sink initializes an S3 client for an S3-compatible endpoint and returns a sink
// for the object at key.
func NewS3Sink(ctx context.Context, cfg ServiceConfig, key string) (*S3Sink, error) {
	if cfg.S3BucketName == "" || key == "" {
		return nil, errors.New("storage: bucket and key are required")
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load AWS SDK config: %w", err)
	}

	// Path-style addressing keeps the bucket out of the host name for S3-compatible services.
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &S3Sink{
		cfg:      cfg,
		key:      key,
		s3Client: client,
		uploader: manager.NewUploader(client),
		logger:   logx.Component("S3Sink"),
	}, nil
}

// Read downloads the snapshot object. A missing object is reported as os.ErrNotExist.
func (c *S3Sink) Read(ctx context.Context) ([]byte, error) {
	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &c.cfg.S3BucketName,
		Key:    &c.key,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("object %s: %w", c, os.ErrNotExist)
		}
		c.logger.Error().Err(err).Str("key", c.key).Msg("S3 snapshot download failed")
		return nil, fmt.Errorf("download %s: %w", c, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	return data, nil
}

// Write replaces the snapshot object with data.
func (c *S3Sink) Write(ctx context.Context, data []byte) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &c.cfg.S3BucketName,
		Key:         &c.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("key", c.key).Msg("S3 snapshot upload failed")
		return fmt.Errorf("upload %s: %w", c, err)
	}
	return nil
}

func (c *S3Sink) String() string {
	return "s3://" + c.cfg.S3BucketName + "/" + c.key
}

// Package s3 keeps exported directory snapshots in an S3 bucket or an
// S3-compatible store such as MinIO.
package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// PutObjectAPI is the part of the S3 client the archive uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds construction parameters.
type Config struct {
	Region   string
	Bucket   string
	Endpoint string // optional; enables path-style addressing for MinIO and friends
}

// Archive writes snapshots as objects.
type Archive struct {
	client PutObjectAPI
	bucket string
	logger *zap.Logger
}

// New creates an archive using the default AWS credentials chain.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, logger), nil
}

// NewWithClient creates an archive over an existing client.
func NewWithClient(client PutObjectAPI, bucket string, logger *zap.Logger) *Archive {
	return &Archive{client: client, bucket: bucket, logger: logger}
}

// Put uploads body under key and returns its s3:// location.
func (a *Archive) Put(ctx context.Context, key string, body []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	location := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	a.logger.Info("Archived directory export", zap.String("location", location), zap.Int("bytes", len(body)))
	return location, nil
}

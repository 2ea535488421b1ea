package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	appconfig "github.com/plantpal/plant-analysis-service/config"
)

// Uploader keeps original plant photos in S3-compatible object storage.
// The analysis pipeline never touches it; photos are stored and deleted on
// their own routes.
type Uploader struct {
	client *s3.Client
	bucket string
	log    *zap.Logger
}

func NewUploader(ctx context.Context, cfg *appconfig.S3Config, log *zap.Logger) (*Uploader, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
				Source:            aws.EndpointSourceCustom,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(customResolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &Uploader{
		client: client,
		bucket: cfg.BucketName,
		log:    log,
	}, nil
}

func (u *Uploader) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		u.log.Error("Failed to upload photo to S3",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	u.log.Info("Photo uploaded to S3",
		zap.String("key", key),
		zap.Int("size", len(data)))

	return nil
}

func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		u.log.Error("Failed to delete photo from S3",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	u.log.Info("Photo deleted from S3", zap.String("key", key))

	return nil
}

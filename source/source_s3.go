package source

import (
	"bytes"
	"context"
	"fmt"

	"dataaccess/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// s3API is the part of the S3 API used by S3Client.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ConnectS3 builds an S3 client from static access key credentials.
func ConnectS3(ctx context.Context, settings config.AWSSession) (*s3.Client, error) {
	if settings.AccessKeyID == "" || settings.SecretAccessKey == "" {
		return nil, fmt.Errorf("the AWS access key id and secret access key are required")
	}
	region := settings.Region
	if region == "" {
		region = config.DefaultAWSRegion
	}

	// Last parameter is the session token, not used with long-term keys
	credentialsProvider := credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, "")
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentialsProvider),
		awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	log.Info("Connected to AWS", zap.String("region", region))
	return s3.NewFromConfig(cfg), nil
}

// S3Client writes tables as delimited text objects into S3.
type S3Client struct {
	ioOptions IOOptions
	client    s3API
}

// S3Option configures an S3Client.
type S3Option func(*S3Client)

// WithWriteOptions sets the options used to serialize tables.
func WithWriteOptions(opts IOOptions) S3Option {
	return func(c *S3Client) {
		c.ioOptions = opts
	}
}

// NewS3Client connects to S3 with the given credentials and returns a client.
func NewS3Client(ctx context.Context, settings config.AWSSession, opts ...S3Option) (*S3Client, error) {
	client, err := ConnectS3(ctx, settings)
	if err != nil {
		return nil, err
	}
	return newS3Client(client, opts...), nil
}

func newS3Client(client s3API, opts ...S3Option) *S3Client {
	c := &S3Client{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Write serializes the table in memory and stores it with a single PutObject call under bucket/key.
// There is no retry and no existence check, an existing object is replaced as S3 does by default.
func (c *S3Client) Write(ctx context.Context, table *Table, bucket string, key string) error {
	body, err := ToCSV(table, c.ioOptions)
	if err != nil {
		return err
	}

	log.Info("Writing table to S3", zap.String("bucket", bucket), zap.String("key", key),
		zap.Int("rows", table.Len()), zap.Int("bytes", len(body)))
	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to write s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// SourceIngestConfiguration returns the client configuration as JSON.
func (c *S3Client) SourceIngestConfiguration() (string, error) {
	return IngestConfiguration(struct {
		IOOptions IOOptions `json:"io_options"`
	}{c.ioOptions})
}

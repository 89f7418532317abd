package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tendant/hatchery/pkg/hatchery"
)

const defaultRegion = "us-east-1"

// Config describes the bucket goose images are written to.
type Config struct {
	Bucket         string
	Region         string // us-east-1 when empty
	PublicIDPrefix string

	// Static credentials. Without both, the default AWS chain applies.
	AccessKeyID     string
	SecretAccessKey string

	// Endpoint replaces the AWS endpoint for S3-compatible hosts.
	Endpoint     string
	UsePathStyle bool

	EnableSSE    bool
	SSEAlgorithm string // AES256 or aws:kms
	SSEKMSKeyID  string

	// EnsureBucket creates the bucket at startup when it is missing.
	EnsureBucket bool
}

// Backend writes goose images to an S3 bucket.
type Backend struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	config   Config
}

// New connects to the bucket described by config. ctx bounds credential
// loading and the bucket check.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if config.Region == "" {
		config.Region = defaultRegion
	}

	awsCfg, err := loadAWSConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		o.UsePathStyle = config.UsePathStyle
	})

	b := &Backend{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   config.Bucket,
		config:   config,
	}
	if config.EnsureBucket {
		if err := b.ensureBucket(ctx); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func loadAWSConfig(ctx context.Context, config Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(config.Region)}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// ensureBucket creates the bucket when HeadBucket reports it missing. A
// bucket already owned by the caller counts as created.
func (b *Backend) ensureBucket(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err == nil {
		return nil
	}
	if !bucketMissing(err) {
		return fmt.Errorf("s3: head bucket %s: %w", b.bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(b.bucket)}
	if b.config.Region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.config.Region),
		}
	}
	if _, err := b.client.CreateBucket(ctx, input); err != nil && !hasErrorCode(err, "BucketAlreadyOwnedByYou") {
		return fmt.Errorf("s3: create bucket %s: %w", b.bucket, err)
	}
	return nil
}

func bucketMissing(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return hasErrorCode(err, "NotFound", "NoSuchBucket")
}

func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && slices.Contains(codes, apiErr.ErrorCode())
}

// ObjectKey returns the key the content for slug is stored under
func (b *Backend) ObjectKey(slug string) string {
	return b.config.PublicIDPrefix + slug
}

// Upload uploads content directly to S3
func (b *Backend) Upload(ctx context.Context, slug string, reader io.Reader) error {
	key := b.ObjectKey(slug)
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}

	// Add server-side encryption if enabled
	if b.config.EnableSSE {
		switch b.config.SSEAlgorithm {
		case "AES256":
			input.ServerSideEncryption = types.ServerSideEncryptionAes256
		case "aws:kms":
			input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			if b.config.SSEKMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(b.config.SSEKMSKeyID)
			}
		}
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return uploadError(key, err)
	}
	return nil
}

// uploadError keeps the HTTP status and the S3 error code of a failed upload
func uploadError(key string, err error) error {
	uploadErr := &hatchery.UploadError{Backend: "s3", PublicID: key, Err: err}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		uploadErr.StatusCode = respErr.HTTPStatusCode()
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		uploadErr.Err = fmt.Errorf("%s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return uploadErr
}

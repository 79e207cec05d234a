package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/model"
)

// ObjectPutter is the subset of the S3 client used by S3Store
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3StoreConfig configures an S3-compatible store
type S3StoreConfig struct {
	Bucket string
	// Endpoint overrides the AWS endpoint, e.g. http://localhost:9000 for MinIO
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	// Prefix is prepended to every object key
	Prefix string
}

// S3Store uploads artifacts as objects named <prefix>/<key><ext>
type S3Store struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *zap.Logger
}

// S3Option configures the S3 store
type S3Option func(*S3Store)

// WithS3Logger sets the logger
func WithS3Logger(logger *zap.Logger) S3Option {
	return func(s *S3Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClient replaces the S3 client
func WithClient(client ObjectPutter) S3Option {
	return func(s *S3Store) {
		s.client = client
	}
}

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3StoreConfig, opts ...S3Option) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	s := &S3Store{
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil {
		return s, nil
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return s, nil
}

// ObjectKey returns the full object name for key and format
func (s *S3Store) ObjectKey(key string, format model.Format) string {
	name := key + format.Extension()
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Put uploads the artifact and returns its s3:// location
func (s *S3Store) Put(ctx context.Context, key string, artifact model.Artifact) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	objectKey := s.ObjectKey(key, artifact.Format)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(artifact.Content),
		ContentType:   aws.String(artifact.ContentType),
		ContentLength: aws.Int64(int64(len(artifact.Content))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectKey, err)
	}

	location := "s3://" + s.bucket + "/" + objectKey
	s.logger.Info("artifact uploaded",
		zap.String("location", location),
		zap.Int("size", artifact.Size))
	return location, nil
}

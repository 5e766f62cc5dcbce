package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nerrad567/homebase/internal/infrastructure/config"
	"github.com/nerrad567/homebase/internal/store"
)

const (
	defaultRegion = "us-east-1"
	contentType   = "application/json"
	objectSuffix  = ".json"
)

// objectAPI is the subset of *s3.Client used by Backend.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Backend stores each collection document as one object in an
// S3-compatible bucket (AWS S3 or MinIO).
//
// Object keys are "<prefix><collection>.json".
type Backend struct {
	client objectAPI
	bucket string
	prefix string
}

// Open creates a Backend from configuration. Credentials come from the
// default AWS chain (environment, shared config, instance role).
func Open(ctx context.Context, cfg config.S3Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("objectstore: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("objectstore: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newBackend(client, cfg.Bucket, cfg.Prefix), nil
}

func newBackend(client objectAPI, bucket, prefix string) *Backend {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Backend{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key used for collection.
func (b *Backend) Key(collection string) string {
	return b.prefix + collection + objectSuffix
}

// Load implements store.Backend. A missing object is an empty collection.
func (b *Backend) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := store.ValidateCollection(collection); err != nil {
		return nil, err
	}

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.Key(collection)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("objectstore: get %s: %w", b.Key(collection), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("objectstore: read %s: %w", b.Key(collection), err)
	}
	return data, nil
}

// Save implements store.Backend. S3 replaces objects atomically, so a
// reader sees either the old or the new document.
func (b *Backend) Save(ctx context.Context, collection string, data []byte) error {
	if err := store.ValidateCollection(collection); err != nil {
		return err
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.Key(collection)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("objectstore: put %s: %w", b.Key(collection), err)
	}
	return nil
}

// HealthCheck verifies the bucket is reachable with the configured credentials.
func (b *Backend) HealthCheck(ctx context.Context) error {
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		return fmt.Errorf("objectstore: head bucket %s: %w", b.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

var _ store.Backend = (*Backend)(nil)

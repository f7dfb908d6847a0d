// Package s3 implements storage.Store on top of the AWS SDK v2, for AWS S3 and
// S3-compatible providers such as Wasabi.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/memohai/bucketlink/internal/storage"
)

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// Options configures a Driver.
type Options struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
}

// Driver is a storage.Store bound to one bucket. It is safe for concurrent use.
type Driver struct {
	client  *awss3.Client
	presign *awss3.PresignClient
	bucket  string
}

var _ storage.Store = (*Driver)(nil)

// New builds an S3 client with static credentials against opts.Endpoint.
// No request is made; use Ping to check connectivity.
func New(ctx context.Context, opts Options) (*Driver, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("s3: bucket is required")
	}
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return NewWithClient(client, opts.Bucket), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *awss3.Client, bucket string) *Driver {
	return &Driver{
		client:  client,
		presign: awss3.NewPresignClient(client),
		bucket:  bucket,
	}
}

// List pages through ListObjectsV2 until the provider reports no more results.
func (d *Driver) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	in := &awss3.ListObjectsV2Input{Bucket: aws.String(d.bucket)}
	if prefix != "" {
		in.Prefix = aws.String(prefix)
	}
	objects := make([]storage.Object, 0)
	pages := awss3.NewListObjectsV2Paginator(d.client, in)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, mapError(err, "list", prefix)
		}
		for _, obj := range page.Contents {
			objects = append(objects, toObject(obj))
		}
	}
	return objects, nil
}

// Stat issues HeadObject for key.
func (d *Driver) Stat(ctx context.Context, key string) (storage.Object, error) {
	out, err := d.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return storage.Object{}, mapError(err, "stat", key)
	}
	return storage.Object{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ETag:         strings.Trim(aws.ToString(out.ETag), `"`),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// PresignGet signs a GetObject request for key valid for ttl. Signing is local;
// it does not check that key exists.
func (d *Driver) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", storage.Wrap(storage.KindInvalidInput, "presign", key, errors.New("key is required"))
	}
	if ttl <= 0 {
		return "", storage.Wrap(storage.KindInvalidInput, "presign", key, errors.New("ttl must be positive"))
	}
	req, err := d.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", mapError(err, "presign", key)
	}
	return req.URL, nil
}

// Ping issues HeadBucket.
func (d *Driver) Ping(ctx context.Context) error {
	_, err := d.client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(d.bucket)})
	if err != nil {
		return mapError(err, "ping", "")
	}
	return nil
}

func toObject(obj types.Object) storage.Object {
	return storage.Object{
		Key:          aws.ToString(obj.Key),
		Size:         aws.ToInt64(obj.Size),
		ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
		LastModified: aws.ToTime(obj.LastModified),
	}
}

// mapError translates an SDK error into a *storage.Error.
func mapError(err error, op, key string) *storage.Error {
	if kind, ok := storage.ContextKind(err); ok {
		return storage.Wrap(kind, op, key, err)
	}
	code := ""
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}
	status := 0
	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		status = statusErr.HTTPStatusCode()
	}
	kind := storage.ClassifyCode(code, status)
	if kind == storage.KindUnknown && code == "" && status == 0 {
		// no response at all: DNS, TLS, connection refused
		kind = storage.KindUnavailable
	}
	return storage.Wrap(kind, op, key, err)
}

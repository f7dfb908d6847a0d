// Package minio implements storage.Store with the MinIO Go SDK, for MinIO and
// other S3-compatible servers.
package minio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/memohai/bucketlink/internal/storage"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options configures a Driver.
type Options struct {
	// Endpoint is a URL such as https://s3.us-east-1.wasabisys.com or http://127.0.0.1:9000.
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
}

// Driver is a storage.Store bound to one bucket. It is safe for concurrent use.
type Driver struct {
	client *miniogo.Client
	bucket string
}

var _ storage.Store = (*Driver)(nil)

// New creates the MinIO client. No request is made; use Ping to check connectivity.
func New(opts Options) (*Driver, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("minio: bucket is required")
	}
	host, secure, err := splitEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}
	lookup := miniogo.BucketLookupAuto
	if opts.UsePathStyle {
		lookup = miniogo.BucketLookupPath
	}
	client, err := miniogo.New(host, &miniogo.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       secure,
		Region:       opts.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}
	return &Driver{client: client, bucket: opts.Bucket}, nil
}

// splitEndpoint turns a URL into the host[:port] and TLS flag the SDK expects.
func splitEndpoint(endpoint string) (string, bool, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", false, fmt.Errorf("minio: parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("minio: endpoint %q must be an http(s) URL", endpoint)
	}
}

// List drains the SDK's listing channel; the SDK follows continuation tokens itself.
func (d *Driver) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := make([]storage.Object, 0)
	for obj := range d.client.ListObjects(ctx, d.bucket, miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, "list", prefix)
		}
		objects = append(objects, storage.Object{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

// Stat returns metadata for key.
func (d *Driver) Stat(ctx context.Context, key string) (storage.Object, error) {
	info, err := d.client.StatObject(ctx, d.bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return storage.Object{}, mapError(err, "stat", key)
	}
	return storage.Object{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// PresignGet signs a GET for key valid for ttl.
func (d *Driver) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", storage.Wrap(storage.KindInvalidInput, "presign", key, errors.New("key is required"))
	}
	if ttl <= 0 {
		return "", storage.Wrap(storage.KindInvalidInput, "presign", key, errors.New("ttl must be positive"))
	}
	u, err := d.client.PresignedGetObject(ctx, d.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", mapError(err, "presign", key)
	}
	return u.String(), nil
}

// Ping checks that the bucket exists and is visible to the credentials.
func (d *Driver) Ping(ctx context.Context) error {
	ok, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return mapError(err, "ping", "")
	}
	if !ok {
		return storage.Wrap(storage.KindNotFound, "ping", "", fmt.Errorf("bucket %q does not exist", d.bucket))
	}
	return nil
}

// mapError translates a MinIO SDK error into a *storage.Error.
func mapError(err error, op, key string) *storage.Error {
	if kind, ok := storage.ContextKind(err); ok {
		return storage.Wrap(kind, op, key, err)
	}
	var resp miniogo.ErrorResponse
	if errors.As(err, &resp) {
		return storage.Wrap(storage.ClassifyCode(resp.Code, resp.StatusCode), op, key, err)
	}
	return storage.Wrap(storage.KindUnavailable, op, key, err)
}

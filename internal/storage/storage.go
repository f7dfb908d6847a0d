// Package storage defines the Store interface for S3-compatible object storage backends.
//
// A Store is bound to a single bucket when it is constructed; callers never
// pass a bucket name. Backends live in the s3 and minio subpackages.
package storage

import (
	"context"
	"time"
)

// Object describes a single object in the bucket.
type Object struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Store abstracts the bucket operations the bot needs.
type Store interface {
	// List returns every object whose key starts with prefix, following
	// continuation tokens until the listing is exhausted.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Stat returns metadata for key without downloading it.
	Stat(ctx context.Context, key string) (Object, error)
	// PresignGet returns a URL granting read access to key for ttl.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Ping verifies the bucket is reachable with the configured credentials.
	Ping(ctx context.Context) error
}

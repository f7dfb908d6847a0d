// Package backend opens the configured storage.Store implementation.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/memohai/bucketlink/internal/config"
	"github.com/memohai/bucketlink/internal/storage"
	"github.com/memohai/bucketlink/internal/storage/minio"
	"github.com/memohai/bucketlink/internal/storage/s3"
)

// Open builds the driver selected by cfg.Provider.
func Open(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	endpoint := cfg.EndpointURL()
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.ProviderS3, "":
		driver, err := s3.New(ctx, s3.Options{
			Endpoint:     endpoint,
			Region:       cfg.Region,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			Bucket:       cfg.Bucket,
			UsePathStyle: cfg.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return driver, nil
	case config.ProviderMinIO:
		driver, err := minio.New(minio.Options{
			Endpoint:     endpoint,
			Region:       cfg.Region,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			Bucket:       cfg.Bucket,
			UsePathStyle: cfg.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return driver, nil
	default:
		return nil, fmt.Errorf("storage: unsupported provider %q", cfg.Provider)
	}
}

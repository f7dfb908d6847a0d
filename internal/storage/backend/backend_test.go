package backend

import (
	"context"
	"testing"

	"github.com/memohai/bucketlink/internal/config"
	"github.com/memohai/bucketlink/internal/storage/minio"
	"github.com/memohai/bucketlink/internal/storage/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(provider string) config.StorageConfig {
	return config.StorageConfig{
		Provider:     provider,
		AccessKey:    "AK",
		SecretKey:    "SK",
		Bucket:       "media",
		Region:       "us-east-1",
		Endpoint:     "http://127.0.0.1:9000",
		UsePathStyle: true,
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	store, err := Open(context.Background(), testConfig("s3"))
	require.NoError(t, err)
	assert.IsType(t, &s3.Driver{}, store)

	store, err = Open(context.Background(), testConfig("MinIO"))
	require.NoError(t, err)
	assert.IsType(t, &minio.Driver{}, store)
}

func TestOpenRejectsUnknownProvider(t *testing.T) {
	_, err := Open(context.Background(), testConfig("gcs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcs")
}

func TestOpenFailureReturnsNilStore(t *testing.T) {
	for _, provider := range []string{"s3", "minio"} {
		cfg := testConfig(provider)
		cfg.Bucket = ""
		store, err := Open(context.Background(), cfg)
		require.Error(t, err, provider)
		assert.True(t, store == nil, "%s: expected a nil interface, got %#v", provider, store)
	}
}

package modules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/memohai/bucketlink/internal/bucket"
	"github.com/memohai/bucketlink/internal/config"
	"github.com/memohai/bucketlink/internal/links"
	"github.com/memohai/bucketlink/internal/storage"
	"github.com/memohai/bucketlink/internal/storage/backend"
	"go.uber.org/fx"
)

const storageCheckTimeout = 10 * time.Second

var StorageModule = fx.Module(
	"storage",
	fx.Provide(
		provideStore,
		provideLister,
		provideLinkGenerator,
	),
	fx.Invoke(checkStorage),
)

// ---------------------------------------------------------------------------
// storage providers
// ---------------------------------------------------------------------------

func provideStore(cfg config.Config) (storage.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storageCheckTimeout)
	defer cancel()
	store, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return store, nil
}

func provideLister(log *slog.Logger, store storage.Store, cfg config.Config) *bucket.Lister {
	return bucket.NewLister(log, store, cfg.Storage.Prefix)
}

func provideLinkGenerator(log *slog.Logger, store storage.Store, cfg config.Config) *links.Generator {
	return links.NewGenerator(log, store, links.Options{
		Endpoint:     cfg.Storage.EndpointURL(),
		Bucket:       cfg.Storage.Bucket,
		VerifyExists: cfg.Links.VerifyExists,
	})
}

// checkStorage pings the bucket at startup. A failure is logged, not fatal:
// /files reports storage problems to the user on each request.
func checkStorage(lc fx.Lifecycle, log *slog.Logger, store storage.Store, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.Ping(ctx); err != nil {
				log.Warn("storage check failed",
					slog.String("bucket", cfg.Storage.Bucket),
					slog.String("kind", storage.KindOf(err).String()),
					slog.Any("error", err),
				)
				return nil
			}
			log.Info("storage ready",
				slog.String("provider", cfg.Storage.Provider),
				slog.String("bucket", cfg.Storage.Bucket),
				slog.String("endpoint", cfg.Storage.EndpointURL()),
			)
			return nil
		},
	})
}

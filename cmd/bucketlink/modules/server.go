package modules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/bucketlink/internal/config"
	"github.com/memohai/bucketlink/internal/handlers"
	"github.com/memohai/bucketlink/internal/server"
	"github.com/memohai/bucketlink/internal/storage"
	"go.uber.org/fx"
)

var ServerModule = fx.Module(
	"server",
	fx.Provide(
		annotateHandler(handlers.NewPingHandler),
		annotateHandler(provideStorageHealthHandler),
		provideServer,
	),
	fx.Invoke(startServer),
)

// annotateHandler wraps a handler provider function with fx.Annotate
// to register it as a server.Handler with the correct group tag
func annotateHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

// ---------------------------------------------------------------------------
// server
// ---------------------------------------------------------------------------

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideStorageHealthHandler(log *slog.Logger, store storage.Store) *handlers.StorageHealthHandler {
	return handlers.NewStorageHealthHandler(log, store)
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers...)
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config) {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		logger.Debug("health server disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

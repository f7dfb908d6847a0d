package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/memohai/bucketlink/internal/storage"
)

const storagePingTimeout = 5 * time.Second

// StoragePinger reports whether the bucket is reachable.
type StoragePinger interface {
	Ping(ctx context.Context) error
}

// StorageHealthHandler serves GET /health/storage.
type StorageHealthHandler struct {
	store  StoragePinger
	logger *slog.Logger
}

// NewStorageHealthHandler creates a storage health handler.
func NewStorageHealthHandler(log *slog.Logger, store StoragePinger) *StorageHealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StorageHealthHandler{
		store:  store,
		logger: log.With(slog.String("handler", "storage_health")),
	}
}

// Register mounts GET /health/storage.
func (h *StorageHealthHandler) Register(e *echo.Echo) {
	e.GET("/health/storage", h.Check)
}

// Check pings the bucket. It answers 503 with the error kind when the bucket
// is unreachable or access is denied.
func (h *StorageHealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storagePingTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		kind := storage.KindOf(err)
		h.logger.Warn("storage ping failed", slog.String("kind", kind.String()), slog.Any("error", err))
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable", Kind: kind.String()})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

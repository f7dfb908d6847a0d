// Package bucket lists the object keys of the configured bucket.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/memohai/bucketlink/internal/logger"
	"github.com/memohai/bucketlink/internal/storage"
)

// ErrList marks a failed listing. The underlying *storage.Error stays in the chain.
var ErrList = errors.New("list bucket")

// ObjectLister is the subset of storage.Store the lister needs.
type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]storage.Object, error)
}

// Lister returns fresh object keys on every call. Nothing is cached.
type Lister struct {
	store  ObjectLister
	prefix string
	log    *slog.Logger
}

// NewLister returns a Lister scoped to prefix ("" for the whole bucket).
func NewLister(log *slog.Logger, store ObjectLister, prefix string) *Lister {
	return &Lister{
		store:  store,
		prefix: prefix,
		log:    log,
	}
}

// Keys returns every key in provider order. An empty bucket yields an empty,
// non-nil slice and a nil error. Failures wrap ErrList. Logs go to the
// request logger in ctx when there is one.
func (l *Lister) Keys(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx, l.log).With(slog.String("component", "bucket"))
	start := time.Now()
	objects, err := l.store.List(ctx, l.prefix)
	if err != nil {
		log.Error("list objects failed",
			slog.String("prefix", l.prefix),
			slog.String("kind", storage.KindOf(err).String()),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %w", ErrList, err)
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	log.Debug("listed objects",
		slog.String("prefix", l.prefix),
		slog.Int("count", len(keys)),
		slog.Duration("took", time.Since(start)),
	)
	return keys, nil
}

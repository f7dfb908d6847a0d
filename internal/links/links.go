// Package links builds download links for objects in the configured bucket.
package links

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/memohai/bucketlink/internal/callback"
	"github.com/memohai/bucketlink/internal/storage"
)

// TemporaryTTL is the validity of a signed link.
const TemporaryTTL = 24 * time.Hour

// Signer is the subset of storage.Store the generator needs.
type Signer interface {
	Stat(ctx context.Context, key string) (storage.Object, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Options configures a Generator.
type Options struct {
	// Endpoint is the public base URL of the storage provider, without trailing slash.
	Endpoint string
	Bucket   string
	// VerifyExists makes Temporary fail for missing keys instead of signing a dead link.
	VerifyExists bool
}

// Generator produces temporary (signed) and permanent (public) links.
type Generator struct {
	signer Signer
	opts   Options
	logger *slog.Logger
}

// NewGenerator returns a Generator.
func NewGenerator(log *slog.Logger, signer Signer, opts Options) *Generator {
	if log == nil {
		log = slog.Default()
	}
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	return &Generator{
		signer: signer,
		opts:   opts,
		logger: log.With(slog.String("component", "links")),
	}
}

// Temporary returns a GET URL for key signed for TemporaryTTL.
func (g *Generator) Temporary(ctx context.Context, key string) (string, error) {
	if g.opts.VerifyExists {
		if _, err := g.signer.Stat(ctx, key); err != nil {
			return "", fmt.Errorf("check %s: %w", key, err)
		}
	}
	url, err := g.signer.PresignGet(ctx, key, TemporaryTTL)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	g.logger.Debug("signed link issued", slog.String("key", key), slog.Duration("ttl", TemporaryTTL))
	return url, nil
}

// Permanent returns <endpoint>/<bucket>/<key>. It is reachable only when the
// bucket or object allows public reads. The key is joined as stored, without
// percent-escaping, so keys containing spaces, '#' or '?' yield URLs that
// clients will split or truncate.
func (g *Generator) Permanent(key string) string {
	return g.opts.Endpoint + "/" + g.opts.Bucket + "/" + key
}

// Link returns the link for key with the requested validity.
func (g *Generator) Link(ctx context.Context, d callback.Duration, key string) (string, error) {
	switch d {
	case callback.DurationTemporary:
		return g.Temporary(ctx, key)
	case callback.DurationPermanent:
		return g.Permanent(key), nil
	default:
		return "", fmt.Errorf("unknown link duration %q", d)
	}
}

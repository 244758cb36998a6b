package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-addressfields/internal/logging"
	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/metrics"
)

const (
	DefaultCachePrefix = "addressfields:country:"
	DefaultCacheTTL    = 24 * time.Hour
	// DefaultLookupTimeout bounds a shared inner lookup, which runs detached
	// from the cancellation of the callers waiting on it.
	DefaultLookupTimeout = 10 * time.Second
)

// CacheOption customises a Cached catalog.
type CacheOption func(*Cached)

// WithCachePrefix sets the Redis key prefix.
func WithCachePrefix(prefix string) CacheOption {
	return func(c *Cached) {
		if strings.TrimSpace(prefix) != "" {
			c.prefix = prefix
		}
	}
}

// WithCacheTTL sets the expiry of cached entries. Zero keeps entries without
// expiry.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *Cached) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithLookupTimeout bounds the shared inner lookup made on a cache miss. Zero
// disables the bound.
func WithLookupTimeout(d time.Duration) CacheOption {
	return func(c *Cached) {
		if d >= 0 {
			c.lookupTimeout = d
		}
	}
}

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cached) {
		c.logger = logging.OrNop(logger)
	}
}

// WithCacheMetrics records hits and misses on m.
func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *Cached) {
		c.metrics = m
	}
}

// Cached stores inner catalog results in Redis. Concurrent misses for the
// same (country, locale) share a single inner lookup. Redis failures are
// logged and the inner catalog is used directly.
type Cached struct {
	inner   Catalog
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	group   singleflight.Group

	lookupTimeout time.Duration
}

// NewCached wraps inner with a Redis cache backed by client.
func NewCached(inner Catalog, client redis.Cmdable, options ...CacheOption) *Cached {
	c := &Cached{
		inner:  inner,
		client: client,
		prefix: DefaultCachePrefix,
		ttl:    DefaultCacheTTL,
		logger: logging.NewNop(),

		lookupTimeout: DefaultLookupTimeout,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Key returns the Redis key used for (country, locale).
func (c *Cached) Key(country, loc string) string {
	return c.prefix + strings.ToUpper(strings.TrimSpace(country)) + ":" + strings.TrimSpace(loc)
}

// Country implements Catalog.
func (c *Cached) Country(ctx context.Context, country, loc string) (address.CountryMetadata, error) {
	if c == nil || c.inner == nil {
		return address.CountryMetadata{}, ErrMissingCatalog
	}
	if c.client == nil {
		return c.inner.Country(ctx, country, loc)
	}

	key := c.Key(country, loc)
	if meta, ok := c.read(ctx, key); ok {
		return meta, nil
	}

	// The shared lookup keeps the first caller's values but not its
	// cancellation; each caller stops waiting when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := c.detached(ctx)
		defer cancel()
		meta, err := c.inner.Country(lookupCtx, country, loc)
		if err != nil {
			return address.CountryMetadata{}, err
		}
		c.write(lookupCtx, key, meta)
		return meta, nil
	})

	select {
	case <-ctx.Done():
		return address.CountryMetadata{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return address.CountryMetadata{}, res.Err
		}
		meta, _ := res.Val.(address.CountryMetadata)
		return meta.Clone(), nil
	}
}

func (c *Cached) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if c.lookupTimeout > 0 {
		return context.WithTimeout(base, c.lookupTimeout)
	}
	return context.WithCancel(base)
}

// Invalidate removes the cached entry for (country, locale).
func (c *Cached) Invalidate(ctx context.Context, country, loc string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.Key(country, loc)).Err()
}

func (c *Cached) read(ctx context.Context, key string) (address.CountryMetadata, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.IncCache(metrics.CacheMiss)
		return address.CountryMetadata{}, false
	}
	if err != nil {
		c.metrics.IncCache(metrics.CacheError)
		c.logger.Warn("address metadata cache read failed", "key", key, "error", err)
		return address.CountryMetadata{}, false
	}

	var meta address.CountryMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		c.metrics.IncCache(metrics.CacheError)
		c.logger.Warn("address metadata cache entry is corrupt", "key", key, "error", err)
		return address.CountryMetadata{}, false
	}
	c.metrics.IncCache(metrics.CacheHit)
	return meta, true
}

func (c *Cached) write(ctx context.Context, key string, meta address.CountryMetadata) {
	payload, err := json.Marshal(meta)
	if err != nil {
		c.logger.Warn("address metadata cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("address metadata cache write failed", "key", key, "error", err)
	}
}

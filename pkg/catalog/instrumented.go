package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-addressfields/internal/logging"
	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/metrics"
)

// Instrumented records lookup counts and latency for an inner catalog and
// logs failed lookups.
type Instrumented struct {
	inner   Catalog
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewInstrumented wraps inner. Nil metrics or logger disable that concern.
func NewInstrumented(inner Catalog, m *metrics.Metrics, logger *slog.Logger) *Instrumented {
	return &Instrumented{
		inner:   inner,
		metrics: m,
		logger:  logging.OrNop(logger),
	}
}

// Country implements Catalog.
func (i *Instrumented) Country(ctx context.Context, country, loc string) (address.CountryMetadata, error) {
	if i == nil || i.inner == nil {
		return address.CountryMetadata{}, ErrMissingCatalog
	}
	start := time.Now()
	meta, err := i.inner.Country(ctx, country, loc)
	i.metrics.ObserveLookup(start, err)
	if err != nil {
		i.logger.Warn("address metadata lookup failed", "country", country, "locale", loc, "error", err)
		return address.CountryMetadata{}, err
	}
	i.logger.Debug("address metadata lookup", "country", country, "locale", loc, "duration", time.Since(start))
	return meta, nil
}

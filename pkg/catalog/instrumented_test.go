package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/metrics"
)

func TestInstrumented_RecordsOutcomes(t *testing.T) {
	m := metrics.New(nil)
	fail := true
	inner := Func(func(ctx context.Context, country, loc string) (address.CountryMetadata, error) {
		if fail {
			return address.CountryMetadata{}, errors.New("unavailable")
		}
		return address.CountryMetadata{Format: "{city}"}, nil
	})
	cat := NewInstrumented(inner, m, nil)

	if _, err := cat.Country(context.Background(), "US", "en"); err == nil {
		t.Fatalf("expected error from inner catalog")
	}
	fail = false
	if _, err := cat.Country(context.Background(), "US", "en"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := testutil.ToFloat64(m.CatalogLookups.WithLabelValues(metrics.OutcomeError)); got != 1 {
		t.Fatalf("expected 1 failed lookup, got %v", got)
	}
	if got := testutil.ToFloat64(m.CatalogLookups.WithLabelValues(metrics.OutcomeOK)); got != 1 {
		t.Fatalf("expected 1 successful lookup, got %v", got)
	}
}

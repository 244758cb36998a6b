package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLookup_CountsOutcomes(t *testing.T) {
	m := New(nil)
	m.ObserveLookup(time.Now(), nil)
	m.ObserveLookup(time.Now(), errors.New("down"))
	m.ObserveLookup(time.Now(), nil)

	if got := testutil.ToFloat64(m.CatalogLookups.WithLabelValues(OutcomeOK)); got != 2 {
		t.Fatalf("expected 2 ok lookups, got %v", got)
	}
	if got := testutil.ToFloat64(m.CatalogLookups.WithLabelValues(OutcomeError)); got != 1 {
		t.Fatalf("expected 1 failed lookup, got %v", got)
	}
}

func TestNew_RegistersOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IncCache(CacheHit)
	m.IncFetch(FetchCommitted)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{"addressfields_catalog_cache_results_total", "addressfields_session_fetches_total"} {
		if !names[want] {
			t.Fatalf("expected %s to be registered, got %v", want, names)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLookup(time.Now(), nil)
	m.IncCache(CacheMiss)
	m.IncFetch(FetchFailed)
}

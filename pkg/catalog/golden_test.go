package catalog_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/catalog"
	"github.com/goliatone/go-addressfields/pkg/testsupport"
)

func TestDefaultCatalog_ResolvedFieldsMatchGoldens(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}

	cases := []struct {
		country string
		locale  string
	}{
		{country: "DE", locale: "en"},
		{country: "JP", locale: "en"},
		{country: "AU", locale: "en"},
		{country: "HK", locale: "en"},
	}

	for _, tc := range cases {
		t.Run(tc.country+"_"+tc.locale, func(t *testing.T) {
			meta, err := cat.Lookup(testsupport.Context(), tc.country, tc.locale)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			got := address.Resolve(meta)

			path := filepath.Join("testdata", "golden", strings.ToLower(tc.country)+"_"+tc.locale+".json")
			testsupport.WriteGolden(t, path, got)
			want := testsupport.MustLoadFields(t, path)
			if diff := testsupport.CompareGolden(want, got); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

package catalog

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/locale"
)

//go:embed data/countries.yaml
var dataFS embed.FS

const defaultDocumentPath = "data/countries.yaml"

var (
	defaultOnce    sync.Once
	defaultStatic  *Static
	defaultLoadErr error
)

// Default returns the static catalog built from the embedded document.
func Default() (*Static, error) {
	defaultOnce.Do(func() {
		defaultStatic, defaultLoadErr = LoadFS(dataFS, defaultDocumentPath)
	})
	return defaultStatic, defaultLoadErr
}

// Static serves country metadata from an in-memory Document. It is
// read-only after construction and safe for concurrent use.
type Static struct {
	doc       Document
	countries []CountryInfo
	locales   []string
}

// NewStatic validates doc and builds a Static catalog. Country codes and
// locale keys are normalized (upper-case codes, canonical BCP 47 locales).
func NewStatic(doc Document) (*Static, error) {
	normalized := Document{
		DefaultLocale:  normalizeLocaleKey(doc.DefaultLocale),
		DefaultCountry: normalizeCountry(doc.DefaultCountry),
		Locales:        make(map[string]LocaleLabels, len(doc.Locales)),
		Countries:      make(map[string]CountryEntry, len(doc.Countries)),
	}
	for key, labels := range doc.Locales {
		normalized.Locales[normalizeLocaleKey(key)] = labels
	}
	for code, entry := range doc.Countries {
		if len(entry.Labels) > 0 {
			overrides := make(map[string]map[string]string, len(entry.Labels))
			for key, labels := range entry.Labels {
				overrides[normalizeLocaleKey(key)] = labels
			}
			entry.Labels = overrides
		}
		normalized.Countries[normalizeCountry(code)] = entry
	}
	if err := normalized.validate(); err != nil {
		return nil, err
	}

	s := &Static{doc: normalized}
	for code, entry := range normalized.Countries {
		s.countries = append(s.countries, CountryInfo{Code: code, Name: entry.Name})
	}
	sort.Slice(s.countries, func(i, j int) bool { return s.countries[i].Code < s.countries[j].Code })
	for key := range normalized.Locales {
		s.locales = append(s.locales, key)
	}
	sort.Strings(s.locales)
	return s, nil
}

// Country returns the layout for country in locale. Countries without an
// entry receive the default country's layout, and locales without labels fall
// back to their base language and then to the document default locale.
func (s *Static) Country(ctx context.Context, country, loc string) (address.CountryMetadata, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return address.CountryMetadata{}, err
		}
	}
	if s == nil {
		return address.CountryMetadata{}, ErrMissingCatalog
	}
	entry, ok := s.doc.Countries[normalizeCountry(country)]
	if !ok {
		entry = s.doc.Countries[s.doc.DefaultCountry]
	}
	return s.metadata(entry, loc), nil
}

// Lookup is the strict variant of Country: unknown countries return
// ErrCountryNotFound instead of the default layout.
func (s *Static) Lookup(ctx context.Context, country, loc string) (address.CountryMetadata, error) {
	if !s.Has(country) {
		return address.CountryMetadata{}, fmt.Errorf("%w: %q", ErrCountryNotFound, country)
	}
	return s.Country(ctx, country, loc)
}

// Has reports whether country has a dedicated entry.
func (s *Static) Has(country string) bool {
	if s == nil {
		return false
	}
	_, ok := s.doc.Countries[normalizeCountry(country)]
	return ok
}

// Countries lists the catalog entries sorted by code.
func (s *Static) Countries() []CountryInfo {
	if s == nil {
		return nil
	}
	return append([]CountryInfo(nil), s.countries...)
}

// Locales lists the locales that carry labels, sorted.
func (s *Static) Locales() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.locales...)
}

// DefaultLocale returns the document default locale.
func (s *Static) DefaultLocale() string {
	if s == nil {
		return ""
	}
	return s.doc.DefaultLocale
}

func (s *Static) metadata(entry CountryEntry, loc string) address.CountryMetadata {
	key := s.localeKey(loc)
	base := s.doc.Locales[key]

	labels := make(map[string]string, len(base.Labels)+4)
	for k, v := range base.Labels {
		labels[k] = v
	}
	overrides := s.countryOverrides(entry, key)
	for k, v := range overrides {
		labels[k] = v
	}

	optional := make(map[string]string, len(entry.Optional))
	for _, field := range entry.Optional {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		_, overridden := overrides[field]
		if text, ok := base.OptionalLabels[field]; ok && !overridden {
			optional[field] = text
			continue
		}
		optional[field] = labels[field]
	}

	meta := address.CountryMetadata{
		Format:         entry.Format,
		Labels:         labels,
		OptionalLabels: optional,
	}
	if len(entry.Zones) > 0 {
		meta.Zones = append([]address.Zone{}, entry.Zones...)
	}
	return meta
}

// countryOverrides picks the entry's label overrides for key, falling back to
// the base language. Overrides written for other locales are not applied, so
// a translated base label is never replaced by an untranslated override.
func (s *Static) countryOverrides(entry CountryEntry, key string) map[string]string {
	if len(entry.Labels) == 0 {
		return nil
	}
	if labels, ok := entry.Labels[key]; ok {
		return labels
	}
	if labels, ok := entry.Labels[locale.Base(key)]; ok {
		return labels
	}
	return nil
}

// localeKey maps loc to a locale with labels: exact match, base language,
// then the document default.
func (s *Static) localeKey(loc string) string {
	normalized := normalizeLocaleKey(loc)
	if _, ok := s.doc.Locales[normalized]; ok {
		return normalized
	}
	if base := locale.Base(normalized); base != "" {
		if _, ok := s.doc.Locales[base]; ok {
			return base
		}
	}
	return s.doc.DefaultLocale
}

func normalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeLocaleKey(raw string) string {
	if normalized, ok := locale.Normalize(raw); ok {
		return normalized
	}
	return strings.TrimSpace(raw)
}

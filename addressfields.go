// Package addressfields exposes the address-field resolution engine from the
// top-level module.
package addressfields

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/catalog"
	"github.com/goliatone/go-addressfields/pkg/locale"
	"github.com/goliatone/go-addressfields/pkg/session"
)

// FieldDescriptor aliases address.FieldDescriptor for callers that only need
// the resolved output.
type FieldDescriptor = address.FieldDescriptor

// CountryMetadata aliases address.CountryMetadata.
type CountryMetadata = address.CountryMetadata

// Catalog aliases catalog.Catalog.
type Catalog = catalog.Catalog

// ErrMissingCountry is returned when no country code is supplied.
var ErrMissingCountry = errors.New("addressfields: missing country")

// Fields is the synchronous path: it resolves the effective country and
// locale, looks up the metadata in cat and returns the ordered descriptors.
// A nil cat uses the embedded catalog.
func Fields(ctx context.Context, cat Catalog, country, localePreference string) ([]FieldDescriptor, error) {
	requested := strings.ToUpper(strings.TrimSpace(country))
	if requested == "" {
		return nil, ErrMissingCountry
	}
	if cat == nil {
		static, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		cat = static
	}

	loc := locale.NewResolver().Resolve(localePreference)
	meta, err := cat.Country(ctx, address.EffectiveCountry(requested), loc)
	if err != nil {
		return nil, err
	}
	return address.Resolve(meta), nil
}

// NewSession exposes the session constructor from the top-level module.
func NewSession(cat Catalog, options ...session.Option) *session.Session {
	return session.New(cat, options...)
}

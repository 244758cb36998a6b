// Package catalog defines the country-metadata collaborator used by the
// address-field resolver, an embedded static implementation, and decorators
// for sanitizing, caching and instrumenting lookups.
package catalog

import (
	"context"
	"errors"

	"github.com/goliatone/go-addressfields/pkg/address"
)

var (
	// ErrCountryNotFound is returned by strict lookups for unknown countries.
	ErrCountryNotFound = errors.New("catalog: country not found")
	// ErrMissingCatalog is returned when a decorator wraps a nil catalog.
	ErrMissingCatalog = errors.New("catalog: missing inner catalog")
)

// Catalog returns address metadata for a (country, locale) pair. The locale
// is always passed explicitly; implementations must not keep a mutable
// "current locale".
type Catalog interface {
	Country(ctx context.Context, country, locale string) (address.CountryMetadata, error)
}

// Func adapts a plain function to Catalog.
type Func func(ctx context.Context, country, locale string) (address.CountryMetadata, error)

// Country implements Catalog.
func (f Func) Country(ctx context.Context, country, locale string) (address.CountryMetadata, error) {
	return f(ctx, country, locale)
}

// CountryInfo identifies a catalog entry.
type CountryInfo struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Lister is implemented by catalogs that can enumerate their countries.
type Lister interface {
	Countries() []CountryInfo
}

// Package addressfields provides a small net/http component that resolves the
// address fields a form must collect for a country and returns them as JSON.
//
// The fields route responds to GET and HEAD requests with the ordered field
// descriptors for the country and locale query parameters. The zones route
// returns searchable subdivision options for select inputs that load their
// options lazily. Metadata comes from the embedded static catalog unless a
// catalog is supplied through the options.
package addressfields

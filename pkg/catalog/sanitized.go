package catalog

import (
	"context"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-addressfields/pkg/address"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// maxSanitizePasses bounds how many entity-encoding levels SanitizeText
// peels off before it settles for escaped output.
const maxSanitizePasses = 8

// SanitizeText strips all markup from raw and returns plain text. Entities
// are decoded so labels such as "Trinidad & Tobago" survive unchanged, and
// the policy is re-applied to the decoded text until it is stable, so
// entity-encoded markup ("&lt;img ...&gt;") is stripped as well. Input that
// is still decoding into new text after the last pass is returned escaped.
func SanitizeText(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	policy := textSanitizer()
	for pass := 0; pass < maxSanitizePasses; pass++ {
		next := strings.TrimSpace(html.UnescapeString(policy.Sanitize(text)))
		if next == text {
			return text
		}
		text = next
	}
	return strings.TrimSpace(policy.Sanitize(text))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// Sanitized strips markup from every label and zone returned by an inner
// catalog. Catalog data ends up in form labels and select options, so it is
// treated as untrusted text.
type Sanitized struct {
	inner Catalog
}

// NewSanitized wraps inner.
func NewSanitized(inner Catalog) *Sanitized {
	return &Sanitized{inner: inner}
}

// Country implements Catalog.
func (s *Sanitized) Country(ctx context.Context, country, loc string) (address.CountryMetadata, error) {
	if s == nil || s.inner == nil {
		return address.CountryMetadata{}, ErrMissingCatalog
	}
	meta, err := s.inner.Country(ctx, country, loc)
	if err != nil {
		return address.CountryMetadata{}, err
	}
	return SanitizeMetadata(meta), nil
}

// SanitizeMetadata returns a copy of meta with sanitized labels and zones.
// The format template is left untouched; only its tokens are ever used.
func SanitizeMetadata(meta address.CountryMetadata) address.CountryMetadata {
	out := meta.Clone()
	for key, value := range out.Labels {
		out.Labels[key] = SanitizeText(value)
	}
	for key, value := range out.OptionalLabels {
		out.OptionalLabels[key] = SanitizeText(value)
	}
	for i := range out.Zones {
		out.Zones[i].Name = SanitizeText(out.Zones[i].Name)
		out.Zones[i].Code = SanitizeText(out.Zones[i].Code)
	}
	return out
}

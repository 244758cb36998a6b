// Package locale picks the locale applied to country-metadata lookups.
//
// There is no process-wide "current locale": a Resolver turns a stored
// preference into a locale value which callers pass explicitly to every
// catalog lookup.
package locale

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

const (
	// DefaultLocale is used when no default is configured.
	DefaultLocale = "en"
	// DefaultCookieName is the cookie the language preference is stored in.
	DefaultCookieName = "language"
)

// Normalize canonicalizes a BCP 47 locale string ("EN" -> "en",
// "pt_br" -> "pt-BR"). It reports false for empty or unparsable input.
func Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil || tag == language.Und {
		return "", false
	}
	return tag.String(), true
}

// Base returns the base language of locale ("pt-BR" -> "pt"). Unparsable input
// is returned unchanged.
func Base(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	base, _ := tag.Base()
	return base.String()
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithDefault sets the locale used when no usable preference is supplied.
func WithDefault(locale string) Option {
	return func(r *Resolver) {
		if normalized, ok := Normalize(locale); ok {
			r.defaultLocale = normalized
		}
	}
}

// WithSupported restricts resolved locales to the supplied set. Preferences
// are matched to the closest supported locale; preferences without a
// reasonable match resolve to the default.
func WithSupported(locales ...string) Option {
	return func(r *Resolver) {
		r.supported = r.supported[:0]
		for _, raw := range locales {
			if normalized, ok := Normalize(raw); ok {
				r.supported = append(r.supported, normalized)
			}
		}
	}
}

// Resolver maps stored locale preferences to the locale used for lookups.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	defaultLocale string
	supported     []string
	matcher       language.Matcher
}

// NewResolver constructs a Resolver with DefaultLocale plus any overrides.
func NewResolver(options ...Option) *Resolver {
	r := &Resolver{defaultLocale: DefaultLocale}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if len(r.supported) > 0 {
		tags := make([]language.Tag, 0, len(r.supported))
		for _, loc := range r.supported {
			tags = append(tags, language.MustParse(loc))
		}
		r.matcher = language.NewMatcher(tags)
	}
	return r
}

// Default returns the configured default locale.
func (r *Resolver) Default() string {
	if r == nil {
		return DefaultLocale
	}
	return r.defaultLocale
}

// Supported returns a copy of the supported locale list, if any.
func (r *Resolver) Supported() []string {
	if r == nil || len(r.supported) == 0 {
		return nil
	}
	return append([]string(nil), r.supported...)
}

// Resolve returns the locale for the next lookup. An absent or unusable
// preference keeps the configured default. Resolve is a pure function of its
// input and the resolver configuration.
func (r *Resolver) Resolve(preference string) string {
	def := r.Default()
	normalized, ok := Normalize(preference)
	if !ok {
		return def
	}
	if r == nil || r.matcher == nil {
		return normalized
	}
	_, idx, confidence := r.matcher.Match(language.MustParse(normalized))
	if confidence == language.No || idx < 0 || idx >= len(r.supported) {
		return def
	}
	return r.supported[idx]
}

// PreferenceFromRequest returns the stored locale preference carried by the
// named cookie, or "" when the request has none. An empty cookieName uses
// DefaultCookieName.
func PreferenceFromRequest(req *http.Request, cookieName string) string {
	if req == nil {
		return ""
	}
	if strings.TrimSpace(cookieName) == "" {
		cookieName = DefaultCookieName
	}
	cookie, err := req.Cookie(cookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

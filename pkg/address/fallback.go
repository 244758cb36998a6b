package address

import (
	"sort"
	"strings"
)

// DefaultCountry is the catalog entry whose layout the fallback territories
// share.
const DefaultCountry = "US"

// fallbackCountries lists codes offered by country pickers that have no
// dedicated catalog entry. All except Antarctica (AQ) are U.S. territories and
// use the U.S. layout.
var fallbackCountries = map[string]struct{}{
	"AS": {},
	"AQ": {},
	"GU": {},
	"MH": {},
	"FM": {},
	"MP": {},
	"PW": {},
	"PR": {},
	"VI": {},
}

// EffectiveCountry maps code to the country the catalog should be queried
// with. Codes in the fallback set resolve to DefaultCountry, everything else is
// returned unchanged.
func EffectiveCountry(code string) string {
	if IsFallbackCountry(code) {
		return DefaultCountry
	}
	return code
}

// IsFallbackCountry reports whether code lacks a dedicated catalog entry.
func IsFallbackCountry(code string) bool {
	_, ok := fallbackCountries[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// FallbackCountries returns the sorted fallback territory codes.
func FallbackCountries() []string {
	out := make([]string, 0, len(fallbackCountries))
	for code := range fallbackCountries {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

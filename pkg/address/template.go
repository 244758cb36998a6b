package address

import "regexp"

// tokenPattern matches placeholder identifiers: a letter followed by one or
// more word characters, so "address1" and "firstName" are single tokens.
var tokenPattern = regexp.MustCompile(`[A-Za-z]\w+`)

var supportedTokens = map[string]struct{}{
	"address1": {},
	"address2": {},
	"city":     {},
	"zip":      {},
	"province": {},
}

// ParseTemplate extracts the supported field tokens from a format template in
// the order they first appear. Separators and unsupported placeholders (name,
// company, country, phone, ...) are dropped. A template without supported
// tokens yields an empty slice.
func ParseTemplate(template string) []string {
	matches := tokenPattern.FindAllString(template, -1)
	tokens := make([]string, 0, len(supportedTokens))
	seen := make(map[string]struct{}, len(supportedTokens))
	for _, match := range matches {
		if _, ok := supportedTokens[match]; !ok {
			continue
		}
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		tokens = append(tokens, match)
	}
	return tokens
}

// IsSupportedToken reports whether token is one of the template placeholders
// the resolver renders.
func IsSupportedToken(token string) bool {
	_, ok := supportedTokens[token]
	return ok
}

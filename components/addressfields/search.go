package addressfields

import (
	"sort"
	"strings"

	"github.com/goliatone/go-addressfields/pkg/address"
)

// SearchZoneOptions filters options by a case-insensitive match on the label.
// Prefix matches come before other matches; within each group the input
// (label) order is kept. An empty query returns the leading options when
// opts.EmptySearchMode is EmptySearchTop and nothing otherwise.
func SearchZoneOptions(options []address.ZoneOption, query string, limit int, opts Options) []address.ZoneOption {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(options) <= limit {
				return append([]address.ZoneOption{}, options...)
			}
			return append([]address.ZoneOption{}, options[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedZone, 0, 16)
	for _, option := range options {
		lowerLabel := strings.ToLower(option.Label)
		if !strings.Contains(lowerLabel, q) {
			continue
		}
		matches = append(matches, matchedZone{
			option:   option,
			isPrefix: strings.HasPrefix(lowerLabel, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]address.ZoneOption, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.option)
	}
	return out
}

type matchedZone struct {
	option   address.ZoneOption
	isPrefix bool
}

package address

import (
	"slices"
	"sort"
	"sync"
	"unicode/utf8"
)

const (
	// ZoneNameMaxLength bounds the zone name segment of an option label,
	// truncation marker included.
	ZoneNameMaxLength = 30
	truncationMarker  = "..."
	zoneLabelSep      = " - "
)

// ZoneLabel builds the display label for zone: the name truncated to
// ZoneNameMaxLength runes followed by " - " and the zone code.
func ZoneLabel(zone Zone) string {
	return truncateName(zone.Name, ZoneNameMaxLength) + zoneLabelSep + zone.Code
}

func truncateName(name string, max int) string {
	if utf8.RuneCountInString(name) <= max {
		return name
	}
	keep := max - utf8.RuneCountInString(truncationMarker)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(name)
	return string(runes[:keep]) + truncationMarker
}

// BuildZoneOptions converts zones into select options sorted ascending by
// label. Ties are broken by value so the order is total.
func BuildZoneOptions(zones []Zone) []ZoneOption {
	if len(zones) == 0 {
		return nil
	}
	options := make([]ZoneOption, 0, len(zones))
	for _, zone := range zones {
		options = append(options, ZoneOption{
			Value: zone.Name,
			Label: ZoneLabel(zone),
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Label != options[j].Label {
			return options[i].Label < options[j].Label
		}
		return options[i].Value < options[j].Value
	})
	return options
}

// ZoneOptionCache memoizes the most recent BuildZoneOptions result. A call
// with a zone list equal to the previous one returns a copy of the cached
// options instead of rebuilding them.
type ZoneOptionCache struct {
	mu      sync.Mutex
	last    []Zone
	options []ZoneOption
	valid   bool
}

// Options returns the sorted options for zones.
func (c *ZoneOptionCache) Options(zones []Zone) []ZoneOption {
	if c == nil {
		return BuildZoneOptions(zones)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || !slices.Equal(c.last, zones) {
		c.last = slices.Clone(zones)
		c.options = BuildZoneOptions(zones)
		c.valid = true
	}
	return slices.Clone(c.options)
}

package address

// FieldKey identifies a canonical address field, decoupled from the catalog's
// own token spelling.
type FieldKey string

const (
	FieldAddress1   FieldKey = "address1"
	FieldAddress2   FieldKey = "address2"
	FieldCity       FieldKey = "city"
	FieldPostalCode FieldKey = "postalCode"
	FieldZone       FieldKey = "zone"
)

// Valid reports whether k is one of the canonical field keys.
func (k FieldKey) Valid() bool {
	switch k {
	case FieldAddress1, FieldAddress2, FieldCity, FieldPostalCode, FieldZone:
		return true
	}
	return false
}

// Zone is a first-level administrative subdivision (state, province, ...).
type Zone struct {
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}

// ZoneOption is a display-ready select option for a Zone.
type ZoneOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CountryMetadata is the raw layout data a catalog returns for a
// (country, locale) pair. Labels and OptionalLabels are unordered; presence of
// a key in OptionalLabels marks that field optional.
type CountryMetadata struct {
	Format         string            `json:"format"`
	Labels         map[string]string `json:"labels"`
	OptionalLabels map[string]string `json:"optionalLabels"`
	Zones          []Zone            `json:"zones,omitempty"`
}

// FieldDescriptor describes one form field in display order.
type FieldDescriptor struct {
	Key         FieldKey     `json:"key"`
	Label       string       `json:"label"`
	Required    bool         `json:"required"`
	ZoneOptions []ZoneOption `json:"zoneOptions,omitempty"`
}

// HasZoneOptions reports whether the field should render as a select.
func (d FieldDescriptor) HasZoneOptions() bool {
	return d.Key == FieldZone && len(d.ZoneOptions) > 0
}

// Clone returns a deep copy of m so callers can share catalog results without
// aliasing maps or slices.
func (m CountryMetadata) Clone() CountryMetadata {
	out := CountryMetadata{Format: m.Format}
	if m.Labels != nil {
		out.Labels = make(map[string]string, len(m.Labels))
		for k, v := range m.Labels {
			out.Labels[k] = v
		}
	}
	if m.OptionalLabels != nil {
		out.OptionalLabels = make(map[string]string, len(m.OptionalLabels))
		for k, v := range m.OptionalLabels {
			out.OptionalLabels[k] = v
		}
	}
	if m.Zones != nil {
		out.Zones = append([]Zone{}, m.Zones...)
	}
	return out
}

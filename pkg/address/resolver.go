package address

// ResolveFields merges metadata labels with the normalized token order.
//
// Only labels whose key appears in keys are kept, ordered by the key's
// position in keys. Labels may be keyed by the canonical field key or by the
// raw template token; the canonical key wins when both are present. A field is required unless its key is present in
// meta.OptionalLabels. The zone field carries select options when meta.Zones
// is non-empty and renders as free text otherwise. Missing labels produce an
// empty, non-nil slice.
func ResolveFields(meta CountryMetadata, keys []FieldKey) []FieldDescriptor {
	return resolveFields(meta, keys, BuildZoneOptions)
}

// Resolve parses meta.Format, normalizes the tokens and resolves the field
// descriptors in one step.
func Resolve(meta CountryMetadata) []FieldDescriptor {
	return ResolveFields(meta, NormalizeTokens(ParseTemplate(meta.Format)))
}

// Resolver is a reusable resolver that memoizes zone options across calls
// with the same zone list.
type Resolver struct {
	zones ZoneOptionCache
}

// NewResolver returns a Resolver with an empty zone option cache.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve behaves like the package-level Resolve.
func (r *Resolver) Resolve(meta CountryMetadata) []FieldDescriptor {
	if r == nil {
		return Resolve(meta)
	}
	keys := NormalizeTokens(ParseTemplate(meta.Format))
	return resolveFields(meta, keys, r.zones.Options)
}

func resolveFields(meta CountryMetadata, keys []FieldKey, zoneOptions func([]Zone) []ZoneOption) []FieldDescriptor {
	descriptors := make([]FieldDescriptor, 0, len(keys))
	if len(meta.Labels) == 0 {
		return descriptors
	}

	// Walking keys rather than the label map keeps the template the sole
	// source of ordering; the first occurrence of a key wins.
	emitted := make(map[FieldKey]struct{}, len(keys))
	for _, key := range keys {
		if _, done := emitted[key]; done || !key.Valid() {
			continue
		}
		label, ok := lookupLabel(meta.Labels, key)
		if !ok {
			continue
		}
		emitted[key] = struct{}{}

		_, optional := lookupLabel(meta.OptionalLabels, key)
		descriptor := FieldDescriptor{
			Key:      key,
			Label:    label,
			Required: !optional,
		}
		if key == FieldZone && len(meta.Zones) > 0 {
			descriptor.ZoneOptions = zoneOptions(meta.Zones)
		}
		descriptors = append(descriptors, descriptor)
	}
	return descriptors
}

// IsRequired reports whether key is required by meta.
func IsRequired(meta CountryMetadata, key FieldKey) bool {
	_, optional := lookupLabel(meta.OptionalLabels, key)
	return !optional
}

// lookupLabel reads labels under the canonical key, then under the raw
// template token ("zip", "province") that catalogs may still use.
func lookupLabel(labels map[string]string, key FieldKey) (string, bool) {
	if label, ok := labels[string(key)]; ok {
		return label, true
	}
	if token := TokenName(key); token != string(key) {
		label, ok := labels[token]
		return label, ok
	}
	return "", false
}

package address

// NormalizeFieldName maps a catalog template token to its canonical field key.
func NormalizeFieldName(token string) FieldKey {
	switch token {
	case "zip":
		return FieldPostalCode
	case "province":
		return FieldZone
	default:
		return FieldKey(token)
	}
}

// NormalizeTokens applies NormalizeFieldName to every token, preserving order.
func NormalizeTokens(tokens []string) []FieldKey {
	keys := make([]FieldKey, 0, len(tokens))
	for _, token := range tokens {
		keys = append(keys, NormalizeFieldName(token))
	}
	return keys
}

// TokenName maps a canonical field key back to the template token it is
// spelled as in catalog formats ("postalCode" -> "zip", "zone" -> "province").
func TokenName(key FieldKey) string {
	switch key {
	case FieldPostalCode:
		return "zip"
	case FieldZone:
		return "province"
	default:
		return string(key)
	}
}

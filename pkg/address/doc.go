// Package address resolves which postal-address fields a form must collect for
// a country: it parses the country's format template into an ordered token
// sequence, normalizes tokens to canonical field keys, merges that order with
// label and optionality metadata, and builds sorted subdivision options.
//
// The template token sequence is the only ordering authority. Label maps are
// treated as unordered key/value lookups. None of the functions here return
// errors: malformed or incomplete metadata degrades to an empty or partial
// descriptor list.
package address

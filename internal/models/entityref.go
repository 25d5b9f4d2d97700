package models

import "regexp"

// identifier shapes that can be joined: 24 hexadecimal characters carried
// over from the upstream document store, and the hyphenated uuids this
// system assigns to its own rows.
var (
	legacyRefPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	uuidRefPattern   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// EntityRef wraps a loosely typed foreign key. History rows routinely carry
// free-text values here; a join is only attempted when the raw value matches
// one of the known identifier shapes.
type EntityRef string

// Valid reports whether the reference can be used as a join key.
func (r EntityRef) Valid() bool {
	raw := string(r)
	return legacyRefPattern.MatchString(raw) || uuidRefPattern.MatchString(raw)
}

// String returns the raw reference value.
func (r EntityRef) String() string {
	return string(r)
}

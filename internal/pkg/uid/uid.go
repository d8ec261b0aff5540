// Package uid generates identifiers: UUIDv7 strings for correlation ids and
// Snowflake numbers for virtual device serials.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}

// Package uid provides unique identifier generators behind small interfaces,
// so callers can swap implementations (UUID, snowflake) without changing code.
package uid

// StringID generates string identifiers.
type StringID interface {
	// Generate returns a new unique string identifier.
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	// Generate returns a new unique int64 identifier.
	Generate() int64
}

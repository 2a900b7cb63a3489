package entity

// Purpose identifies what a one-time code authorizes.
type Purpose int16

const (
	PurposeUnknown Purpose = iota
	PurposePasswordReset
	PurposeBPAuthorization
)

// String returns a string representation of the Purpose.
func (p Purpose) String() string {
	switch p {
	case PurposePasswordReset:
		return "password_reset"
	case PurposeBPAuthorization:
		return "bp_authorization"
	default:
		return "unknown"
	}
}

// Valid reports whether the purpose is one of the known values.
func (p Purpose) Valid() bool {
	return p == PurposePasswordReset || p == PurposeBPAuthorization
}

// ParsePurpose converts a raw string into a Purpose.
func ParsePurpose(raw string) Purpose {
	switch raw {
	case "password_reset":
		return PurposePasswordReset
	case "bp_authorization":
		return PurposeBPAuthorization
	default:
		return PurposeUnknown
	}
}

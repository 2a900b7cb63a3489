package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// Generator defines the contract for one-time code generation.
type Generator interface {
	// Generate returns a new random code.
	Generate() (string, error)
}

// Numeric generates uniformly random numeric codes of a fixed length.
//
// No leading zeros: a 6-digit generator produces codes in [100000, 999999],
// which keeps codes readable when relayed verbally.
type Numeric struct {
	low  int64
	span int64
}

// NewNumeric constructs a Numeric generator. Lengths outside 4..10 fall back
// to 6 digits.
func NewNumeric(digits int) *Numeric {
	if digits < 4 || digits > 10 {
		digits = 6
	}

	low := int64(1)
	for range digits - 1 {
		low *= 10
	}

	return &Numeric{low: low, span: low*10 - low}
}

// Generate returns a new random code.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n.span))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.low+v.Int64(), 10), nil
}

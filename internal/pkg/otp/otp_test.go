package otp

import (
	"strconv"
	"testing"
)

func TestNumericGenerate(t *testing.T) {
	gen := NewNumeric(6)

	for range 200 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("Generate() = %q, want 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("Generate() = %q, not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("Generate() = %d, out of range", n)
		}
	}
}

func TestNumericFallbackLength(t *testing.T) {
	for _, bad := range []int{0, -3, 99} {
		code, err := NewNumeric(bad).Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("NewNumeric(%d).Generate() = %q, want 6 digits", bad, code)
		}
	}
}

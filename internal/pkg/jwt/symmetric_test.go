package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fixedUUID struct{}

func (fixedUUID) Generate() string { return "2c2e9f3a-0000-7000-8000-0000000000ff" }

func testSecret(fill byte) []byte {
	s := make([]byte, 64)
	for i := range s {
		s[i] = fill
	}
	return s
}

func newSymmetric(t *testing.T, secret []byte, now time.Time) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:     secret,
		Issuer:     "healthrecord",
		Audiences:  []string{"healthrecord-api"},
		TTLMinutes: time.Hour,
		Clock:      &fakeClock{now: now},
		UUID:       fixedUUID{},
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return s
}

func TestNewHS512RejectsShortKey(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("too-short")})
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("NewHS512() error = %v, want ErrSigningKeyTooShort", err)
	}
}

func TestSymmetricRoundTrip(t *testing.T) {
	s := newSymmetric(t, testSecret('a'), time.Now())

	token, err := s.Generate("user-1", "ada@example.com", "patient")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token is not a compact JWS: %q", token)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.UserEmail != "ada@example.com" || claims.UserRole != "patient" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want the user id", claims.Subject)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	// Issued two hours ago with a one hour TTL.
	s := newSymmetric(t, testSecret('a'), time.Now().Add(-2*time.Hour))

	token, err := s.Generate("user-1", "ada@example.com", "patient")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := s.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	signer := newSymmetric(t, testSecret('a'), time.Now())
	verifier := newSymmetric(t, testSecret('b'), time.Now())

	token, err := signer.Generate("user-1", "ada@example.com", "patient")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("Verify() accepted a token signed with a different key")
	}
}

package entity

import (
	"testing"
	"time"
)

func TestExpiredBoundary(t *testing.T) {
	exp := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
	c := OneTimeCode{ExpiresAt: exp}

	if c.Expired(exp.Add(-time.Second)) {
		t.Fatal("code must be live just before expiry")
	}
	if !c.Expired(exp) {
		t.Fatal("code must be expired exactly at expiry")
	}
	if !c.Expired(exp.Add(time.Second)) {
		t.Fatal("code must be expired after expiry")
	}
}

func TestParsePurpose(t *testing.T) {
	cases := map[string]Purpose{
		"password_reset":   PurposePasswordReset,
		"bp_authorization": PurposeBPAuthorization,
		"":                 PurposeUnknown,
		"email_change":     PurposeUnknown,
	}

	for raw, want := range cases {
		if got := ParsePurpose(raw); got != want {
			t.Fatalf("ParsePurpose(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestPurposeRoundTrip(t *testing.T) {
	for _, p := range []Purpose{PurposePasswordReset, PurposeBPAuthorization} {
		if got := ParsePurpose(p.String()); got != p {
			t.Fatalf("ParsePurpose(%q) = %v, want %v", p.String(), got, p)
		}
		if !p.Valid() {
			t.Fatalf("%v must be valid", p)
		}
	}
	if PurposeUnknown.Valid() {
		t.Fatal("unknown purpose must not be valid")
	}
}

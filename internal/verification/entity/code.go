package entity

import "time"

// OneTimeCode is a short-lived numeric code bound to an email and a purpose.
//
// Only the HMAC of the code is stored. At most one live code exists per
// (email, purpose) pair; issuing a new one supersedes the previous.
type OneTimeCode struct {
	ID        int64
	Email     string
	Purpose   Purpose
	CodeHash  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code is past its validity window at the given time.
//
// The boundary is exclusive: a code expires the instant now equals ExpiresAt.
func (c OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Account is the read-only view of a user a code can be issued to.
type Account struct {
	ID          string
	Email       string
	FullName    string
	Role        string
	DateOfBirth *time.Time
}

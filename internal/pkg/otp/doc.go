// Package otp generates short numeric one-time codes.
//
// Codes are random (not time-based), meant to be persisted server-side with an
// expiry and verified once, typically after delivery over email.
package otp

// Package entity holds the notification domain types.
package entity

import "time"

// DeliveryStatus tracks one email attempt.
type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = iota
	DeliveryStatusQueued
	DeliveryStatusSent
	DeliveryStatusFailed
)

// String returns a string representation of the DeliveryStatus.
func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusQueued:
		return "queued"
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DeliveryLog is the audit row written for every outgoing email. A failed
// attempt keeps the provider response and a retry hint for the operator.
type DeliveryLog struct {
	ID               int64
	Recipient        string
	Subject          string
	Status           DeliveryStatus
	ProviderResponse string
	NextRetryAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

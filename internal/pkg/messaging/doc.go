// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// The goal is to keep business code independent from the underlying messaging
// system. The shipped implementation wraps NATS; use cases rely only on the
// interfaces in this package.
package messaging

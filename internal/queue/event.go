// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer pair that moves OTP mail off the request path.
package queue

// OTPEmailEvent is published when a verification code must be delivered to a
// user.  It carries everything the consumer needs to build the message
// without querying the primary database.
type OTPEmailEvent struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	IssuedAt string `json:"issued_at"`
}

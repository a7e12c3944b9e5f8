// Package mail delivers verification codes to users.  The core only ever
// talks to the Notifier interface; the concrete transport (SMTP, log-only,
// or the message broker) is chosen at startup.
package mail

import (
	"context"
	"fmt"
	"log"
)

// Notifier delivers a plain-text message to an address.  Delivery is
// best-effort: implementations return an error so callers can surface the
// failure, but no implementation retries on its own.
type Notifier interface {
	Send(to, subject, body string) error
}

// OTPDispatcher formats and sends verification-code mail through a Notifier.
// It satisfies the service layer's dispatcher contract for synchronous
// delivery; the queue publisher is the asynchronous alternative.
type OTPDispatcher struct {
	Notifier Notifier
}

func (d *OTPDispatcher) DispatchOTP(ctx context.Context, email, code string) error {
	return d.Notifier.Send(email, "OTP", fmt.Sprintf("this is your OTP: %s", code))
}

// LogNotifier writes outgoing mail to the process log instead of delivering
// it.  Used in development when no SMTP server is configured.
type LogNotifier struct{}

func (LogNotifier) Send(to, subject, body string) error {
	log.Printf("mail: (not delivered) to=%s subject=%q body=%q", to, subject, body)
	return nil
}

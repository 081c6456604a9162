// Package email renders the customer receipt and delivers it through one of
// several transports (SMTP, Amazon SES, Resend). Nothing here knows about
// receipts in storage: the worker maps a notification job to a Summary and
// Lines before calling the Renderer.
package email

import (
	"context"
	"net/mail"
)

// Address is a display name plus mailbox.
type Address struct {
	Name  string
	Email string
}

// String formats the address for a From/To header, RFC 2047-encoding the
// display name when needed.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message is a fully rendered email ready for a Transport.
type Message struct {
	From    Address
	To      string
	Subject string
	HTML    string
	Text    string // optional plain-text alternative
}

// Transport is the delivery capability. Implementations must be safe for
// concurrent use: one Transport is shared by every worker goroutine.
type Transport interface {
	// Send submits msg once and returns the transport-assigned message id.
	Send(ctx context.Context, msg Message) (messageID string, err error)

	// Verify checks that the transport is reachable and the credentials are
	// accepted, without sending anything.
	Verify(ctx context.Context) error

	// Name identifies the transport in logs ("smtp", "ses", "resend").
	Name() string
}

// Package email delivers reservation decision notifications to requesters.
package email

import (
	"context"
	"time"
)

// SendRequest is one outbound notification handed to the provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address (e.g. "Reservas Campus <noreply@campus.edu>")
	Subject string
	HTML    string // HTML body
	ReplyTo string // Reply-to address
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender delivers one notification. Decision mails go out one at a time, at
// the moment the decision is persisted, so there is no batch path.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

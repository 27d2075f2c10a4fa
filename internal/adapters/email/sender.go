package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address (e.g. "Gama Gourmet <noreply@gamagourmet.cl>")
	Subject string
	HTML    string // HTML body
	ReplyTo string // Reply-to address
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender delivers a single transactional email. The app only sends
// account-invite mail, so there is no batch API.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

package email

import (
	"context"
	"time"
)

// Attachment is a file sent along with an email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SendRequest is one outgoing email.
type SendRequest struct {
	To          []string
	From        string // overrides the sender's default, e.g. "El Capitano Academy <noreply@elcapitano.academy>"
	Subject     string
	HTML        string
	Text        string
	ReplyTo     string
	Attachments []Attachment
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers emails through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

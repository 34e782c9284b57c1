package email

import (
	"context"
	"time"
)

// SendRequest contains the data for one outbound email.
type SendRequest struct {
	To      []string
	From    string // sender address (e.g. "Complaint Desk <noreply@portal.example.edu>")
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult is the provider's acknowledgement of a send.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider. The portal uses it for
// submission acknowledgements only; status-change notifications come from the
// complaint backend.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

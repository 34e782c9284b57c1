package flash

import (
	"context"

	domain "complaintdesk/internal/domain/notification"
)

// Store persists one-shot notifications until the client's next render.
// Push never blocks the emitting flow on anything but the local write;
// Consume returns every pending notification at once and removes them, so a
// burst of successive notifications is surfaced together rather than one
// dismissing another.
type Store interface {
	Push(ctx context.Context, n domain.Notification) error
	Consume(ctx context.Context, clientID string) ([]domain.Notification, error)
}

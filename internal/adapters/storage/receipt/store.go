package receipt

import (
	"context"
	"time"

	"complaintdesk/internal/domain/category"
)

// Receipt is the portal's local record of one accepted submission. The
// complaint body stays with the backend; this log only supports the
// acknowledgement email and operational lookups.
type Receipt struct {
	ID           string
	Category     category.Category
	ComplaintID  string
	StudentEmail string
	SubmittedAt  time.Time
}

// Store persists submission receipts.
type Store interface {
	Save(ctx context.Context, r Receipt) error
	ListRecent(ctx context.Context, limit int) ([]Receipt, error)
}

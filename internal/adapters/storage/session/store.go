package session

import (
	"context"
	"errors"

	"complaintdesk/internal/domain/category"
	domain "complaintdesk/internal/domain/session"
)

// ErrNotFound is returned when no session is stored for a (client, category)
// pair. The gate treats it as "not signed in", never as a failure.
var ErrNotFound = errors.New("no session stored for category")

// Store is the injected session-store abstraction: the portal's stand-in for
// per-browser token storage, keyed by client and category so lab and icc
// sessions never collide. The gate only reads; the auth flow writes.
type Store interface {
	Get(ctx context.Context, clientID string, cat category.Category) (domain.AdminSession, error)
	Set(ctx context.Context, s domain.AdminSession) error
	Delete(ctx context.Context, clientID string, cat category.Category) error
}

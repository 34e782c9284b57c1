package session

import (
	"time"

	"complaintdesk/internal/domain/category"
)

// AdminProfile is the admin identity returned by the backend on a successful
// login or signup. The portal stores it alongside the token for display only.
type AdminProfile struct {
	ID    string
	Name  string
	Email string
}

// AdminSession is a stored backend session for one (client, category) pair.
// The token is opaque to this layer: the gate checks presence only, and the
// backend decides validity on each subsequent API call. Lab and ICC sessions
// are keyed distinctly and never overwrite each other.
type AdminSession struct {
	ClientID string
	Category category.Category
	Token    string
	Admin    AdminProfile
	SavedAt  time.Time
}

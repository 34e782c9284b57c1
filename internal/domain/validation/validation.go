package validation

import "net/mail"

// FieldErrors maps a form field name to a human-readable message. A
// validation pass always returns a freshly built map covering every failing
// field, never a partial merge with a previous pass.
type FieldErrors map[string]string

// Valid reports whether the pass found no violations.
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

// ValidEmail reports whether s looks like a deliverable email address.
// Format checking only; deliverability is the backend's concern.
func ValidEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject "Name <a@b>" style input; forms expect a bare address.
	return addr.Address == s
}

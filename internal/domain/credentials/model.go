package credentials

import (
	"fmt"

	"complaintdesk/internal/domain/validation"
)

// Mode selects which rule set applies to an auth attempt. Signup carries one
// extra required field (name); everything else is shared.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 6

// ParseMode validates the auth tab value from the form.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeLogin, ModeSignup:
		return Mode(raw), nil
	}
	return "", fmt.Errorf("unknown auth mode: %q", raw)
}

// Credentials is the ephemeral auth form state. It is never retained after
// the submit attempt completes.
type Credentials struct {
	Mode     Mode
	Email    string
	Password string
	Name     string // signup only
}

// Validate applies the rule set for the active mode, all-or-nothing.
// POST: returns an empty map iff the attempt may be sent to the backend
func (c Credentials) Validate() validation.FieldErrors {
	errs := validation.FieldErrors{}
	if !validation.ValidEmail(c.Email) {
		errs["email"] = "Valid email required"
	}
	if len(c.Password) < MinPasswordLen {
		errs["password"] = "Password must be at least 6 characters"
	}
	if c.Mode == ModeSignup && c.Name == "" {
		errs["name"] = "Name is required"
	}
	return errs
}

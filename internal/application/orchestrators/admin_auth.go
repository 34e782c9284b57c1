package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"complaintdesk/internal/adapters/complaintapi"
	sessionStore "complaintdesk/internal/adapters/storage/session"
	"complaintdesk/internal/domain/category"
	"complaintdesk/internal/domain/credentials"
	domainSession "complaintdesk/internal/domain/session"
)

// AuthClient is the backend client interface needed by admin auth.
type AuthClient interface {
	Login(ctx context.Context, cat category.Category, email, password string) (complaintapi.AuthResult, error)
	Signup(ctx context.Context, cat category.Category, email, password, name string) (complaintapi.AuthResult, error)
}

// AdminAuthCommand holds one login or signup attempt. Credentials are
// ephemeral: nothing from them is retained beyond the returned session.
type AdminAuthCommand struct {
	ClientID string
	Category category.Category
	Creds    credentials.Credentials
}

// AdminAuthResult holds the admin profile after a persisted session.
type AdminAuthResult struct {
	Admin domainSession.AdminProfile
}

// AdminAuthDeps are the external dependencies for admin auth.
type AdminAuthDeps struct {
	API      AuthClient
	Sessions sessionStore.Store
	Flights  *FlightRegistry
}

// ExecuteAdminAuth validates credentials for the active mode, exchanges them
// with the backend, and persists the returned token + profile for this
// (client, category) pair. Navigation after auth is immediate; no
// confirmation delay applies.
// POST: on success the session store holds the new token; on failure nothing
// is stored and the guard is released
func ExecuteAdminAuth(ctx context.Context, cmd AdminAuthCommand, deps AdminAuthDeps) (AdminAuthResult, error) {
	if errs := cmd.Creds.Validate(); !errs.Valid() {
		return AdminAuthResult{}, &ValidationError{Fields: errs}
	}

	flightKey := cmd.ClientID + "|" + string(cmd.Category) + "-auth"
	if !deps.Flights.Begin(flightKey) {
		return AdminAuthResult{}, ErrSubmissionInFlight
	}
	defer deps.Flights.End(flightKey)

	var (
		result complaintapi.AuthResult
		err    error
	)
	switch cmd.Creds.Mode {
	case credentials.ModeSignup:
		result, err = deps.API.Signup(ctx, cmd.Category, cmd.Creds.Email, cmd.Creds.Password, cmd.Creds.Name)
	default:
		result, err = deps.API.Login(ctx, cmd.Category, cmd.Creds.Email, cmd.Creds.Password)
	}
	if err != nil {
		slog.Info("auth_event", "event", "auth_failed", "category", cmd.Category, "mode", cmd.Creds.Mode, "email", cmd.Creds.Email)
		return AdminAuthResult{}, err
	}

	sess := domainSession.AdminSession{
		ClientID: cmd.ClientID,
		Category: cmd.Category,
		Token:    result.Token,
		Admin:    result.Admin,
		SavedAt:  time.Now().UTC(),
	}
	if err := deps.Sessions.Set(ctx, sess); err != nil {
		return AdminAuthResult{}, fmt.Errorf("persist session: %w", err)
	}

	slog.Info("auth_event", "event", "auth_success", "category", cmd.Category, "mode", cmd.Creds.Mode, "email", cmd.Creds.Email)
	return AdminAuthResult{Admin: result.Admin}, nil
}

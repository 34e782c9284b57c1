package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"complaintdesk/internal/domain/category"
	"complaintdesk/internal/domain/complaint"
)

// StatusUpdater is the backend client interface needed by status updates.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, cat category.Category, token, complaintID, status string) error
}

// UpdateStatusCommand holds one dashboard status change.
type UpdateStatusCommand struct {
	Category    category.Category
	Token       string
	ComplaintID string
	Status      string
}

// UpdateStatusDeps are the external dependencies for status updates.
type UpdateStatusDeps struct {
	API StatusUpdater
}

// ErrUnknownStatus rejects a status outside the dashboard vocabulary before
// any network call.
var ErrUnknownStatus = errors.New("unknown complaint status")

// ExecuteUpdateStatus changes one complaint's status via the backend, which
// also emails the student about the change.
// PRE: cmd.Token is the stored session token for cmd.Category
func ExecuteUpdateStatus(ctx context.Context, cmd UpdateStatusCommand, deps UpdateStatusDeps) error {
	if !complaint.ValidStatus(cmd.Status) {
		return ErrUnknownStatus
	}
	if cmd.ComplaintID == "" {
		return errors.New("complaint id is required")
	}

	if err := deps.API.UpdateStatus(ctx, cmd.Category, cmd.Token, cmd.ComplaintID, cmd.Status); err != nil {
		slog.Error("status_update_failed", "category", cmd.Category, "complaint_id", cmd.ComplaintID, "error", err.Error())
		return err
	}

	slog.Info("status_updated", "category", cmd.Category, "complaint_id", cmd.ComplaintID, "status", cmd.Status)
	return nil
}

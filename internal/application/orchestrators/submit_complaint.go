package orchestrators

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"complaintdesk/internal/adapters/complaintapi"
	emailAdapter "complaintdesk/internal/adapters/email"
	receiptStore "complaintdesk/internal/adapters/storage/receipt"
	"complaintdesk/internal/domain/complaint"
	"complaintdesk/internal/domain/validation"
)

// ComplaintSubmitter is the backend client interface needed by this
// orchestrator.
type ComplaintSubmitter interface {
	SubmitComplaint(ctx context.Context, d complaint.Draft, photoBase64 *string) (complaintapi.SubmitResult, error)
}

// PhotoUpload is an optional image attachment as received from the form.
// Size is checked against the limit before Reader is touched, so oversized
// files cost no encoding work.
type PhotoUpload struct {
	ContentType string
	Size        int64
	Reader      io.Reader
}

// SubmitComplaintCommand holds one submit attempt.
// PRE: Draft.Category is valid; Photo is nil for ICC drafts.
type SubmitComplaintCommand struct {
	ClientID string
	Draft    complaint.Draft
	Photo    *PhotoUpload
}

// SubmitComplaintResult holds the outcome of an accepted submission.
type SubmitComplaintResult struct {
	ComplaintID string
}

// SubmitComplaintDeps are the external dependencies for this orchestrator.
// Receipts and Email are best-effort: their failures are logged, never
// surfaced, and never undo an accepted submission.
type SubmitComplaintDeps struct {
	API       ComplaintSubmitter
	Receipts  receiptStore.Store
	Email     emailAdapter.Sender
	EmailFrom string
	ReplyTo   string
	Flights   *FlightRegistry
}

var (
	// ErrPhotoTooLarge rejects an attachment locally, before any encoding
	// or network work.
	ErrPhotoTooLarge = errors.New("File size must be less than 5MB")

	// ErrSubmissionInFlight blocks a re-entrant submit while the previous
	// one is still pending.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
)

// ValidationError carries the full per-field error set of a blocked attempt.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d fields", len(e.Fields))
}

// ExecuteSubmitComplaint runs one submit cycle as explicit sequential
// stages: validate, claim the in-flight guard, encode the attachment, send,
// then record the receipt and acknowledge by email.
// PRE: cmd.ClientID is non-empty
// POST: at most one backend POST is issued; the guard is released on every
// exit path
func ExecuteSubmitComplaint(ctx context.Context, cmd SubmitComplaintCommand, deps SubmitComplaintDeps) (SubmitComplaintResult, error) {
	if errs := cmd.Draft.Validate(); !errs.Valid() {
		return SubmitComplaintResult{}, &ValidationError{Fields: errs}
	}

	if cmd.Photo != nil && cmd.Photo.Size > complaint.MaxPhotoBytes {
		return SubmitComplaintResult{}, ErrPhotoTooLarge
	}

	flightKey := cmd.ClientID + "|" + string(cmd.Draft.Category) + "-complaint"
	if !deps.Flights.Begin(flightKey) {
		return SubmitComplaintResult{}, ErrSubmissionInFlight
	}
	defer deps.Flights.End(flightKey)

	// Attachment encoding must complete before the network call is issued.
	var photoBase64 *string
	if cmd.Photo != nil {
		encoded, err := encodePhoto(cmd.Photo)
		if err != nil {
			return SubmitComplaintResult{}, fmt.Errorf("encode photo: %w", err)
		}
		photoBase64 = &encoded
	}

	result, err := deps.API.SubmitComplaint(ctx, cmd.Draft, photoBase64)
	if err != nil {
		slog.Error("complaint_submit_failed", "category", cmd.Draft.Category, "error", err.Error())
		return SubmitComplaintResult{}, err
	}

	slog.Info("complaint_submitted", "category", cmd.Draft.Category, "complaint_id", result.ComplaintID, "has_photo", photoBase64 != nil)

	if deps.Receipts != nil {
		r := receiptStore.Receipt{
			ID:           result.ComplaintID + "-receipt",
			Category:     cmd.Draft.Category,
			ComplaintID:  result.ComplaintID,
			StudentEmail: cmd.Draft.Email,
			SubmittedAt:  time.Now().UTC(),
		}
		if err := deps.Receipts.Save(ctx, r); err != nil {
			slog.Error("receipt_save_failed", "complaint_id", result.ComplaintID, "error", err.Error())
		}
	}

	sendAcknowledgement(ctx, cmd, result.ComplaintID, deps)

	return SubmitComplaintResult{ComplaintID: result.ComplaintID}, nil
}

// encodePhoto reads the upload and produces a self-contained data URL, the
// only form the backend accepts (no multipart streams).
func encodePhoto(p *PhotoUpload) (string, error) {
	data, err := io.ReadAll(io.LimitReader(p.Reader, complaint.MaxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > complaint.MaxPhotoBytes {
		// Size header lied; enforce the limit on actual bytes too.
		return "", ErrPhotoTooLarge
	}
	return "data:" + p.ContentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// sendAcknowledgement emails the student a receipt. Best-effort: failures
// are logged and never surfaced to the submitting flow.
func sendAcknowledgement(ctx context.Context, cmd SubmitComplaintCommand, complaintID string, deps SubmitComplaintDeps) {
	if deps.Email == nil {
		return
	}
	req := emailAdapter.SendRequest{
		To:      []string{cmd.Draft.Email},
		From:    deps.EmailFrom,
		ReplyTo: deps.ReplyTo,
		Subject: fmt.Sprintf("%s complaint received", cmd.Draft.Category.DisplayName()),
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your %s complaint has been received and is pending review. Its reference ID is <strong>%s</strong>.</p><p>You'll receive email updates as its status changes.</p>",
			cmd.Draft.Name, cmd.Draft.Category.DisplayName(), complaintID,
		),
	}
	if _, err := deps.Email.Send(ctx, req); err != nil {
		slog.Error("acknowledgement_email_failed", "complaint_id", complaintID, "error", err.Error())
	}
}

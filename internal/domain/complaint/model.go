package complaint

import (
	"time"

	"complaintdesk/internal/domain/category"
	"complaintdesk/internal/domain/validation"
)

// MaxPhotoBytes is the upper bound for an attached photo. Files over this
// limit are rejected locally before any encoding or network work happens.
const MaxPhotoBytes = 5 << 20 // 5 MiB

// MinComplaintLen is the minimum length of the complaint description.
const MinComplaintLen = 10

// Complaint statuses as issued by the backend.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Statuses lists the statuses an admin may assign from the dashboard.
var Statuses = []string{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// ValidStatus reports whether s is a known complaint status.
func ValidStatus(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Draft is the in-progress, not-yet-submitted form state for a complaint.
// It lives for exactly one submit attempt: built from the posted form,
// validated, and either sent and discarded or handed back to the form with
// its errors.
// INVARIANT: LabNumber is meaningful only when Category is Lab.
type Draft struct {
	Category   category.Category
	Name       string
	RollNumber string
	Stream     string
	Phone      string
	Email      string
	LabNumber  string
	Complaint  string
}

// Validate applies the per-form constraint set, all-or-nothing: if any field
// fails the whole submission is blocked and every failing field carries a
// message. Calling it twice on the same draft yields identical error sets.
// PRE: d.Category is a valid category
// POST: returns an empty map iff the draft may be submitted
func (d Draft) Validate() validation.FieldErrors {
	errs := validation.FieldErrors{}
	if d.Name == "" {
		errs["name"] = "Name is required"
	}
	if d.RollNumber == "" {
		errs["roll_number"] = "Roll number is required"
	}
	if d.Stream == "" {
		errs["stream"] = "Stream is required"
	}
	if len(d.Phone) < 10 {
		errs["phone"] = "Valid phone number required"
	}
	if !validation.ValidEmail(d.Email) {
		errs["email"] = "Valid email required"
	}
	if d.Category == category.Lab && d.LabNumber == "" {
		errs["lab_number"] = "Lab number is required"
	}
	if len(d.Complaint) < MinComplaintLen {
		errs["complaint"] = "Complaint must be at least 10 characters"
	}
	return errs
}

// Complaint is a stored complaint as returned by the backend list endpoint.
type Complaint struct {
	ID          string
	Name        string
	RollNumber  string
	Stream      string
	Phone       string
	Email       string
	Complaint   string
	Status      string
	CreatedAt   time.Time
	LabNumber   string
	PhotoBase64 string
}

// HasPhoto reports whether a photo was attached to this complaint.
func (c Complaint) HasPhoto() bool {
	return c.PhotoBase64 != ""
}

package web

import (
	"errors"
	"net/http"
	"strings"

	"complaintdesk/internal/adapters/complaintapi"
	"complaintdesk/internal/adapters/http/middleware"
	"complaintdesk/internal/application/orchestrators"
	"complaintdesk/internal/domain/category"
	complaintDomain "complaintdesk/internal/domain/complaint"
	notificationDomain "complaintdesk/internal/domain/notification"
)

// maxUploadMemory bounds the multipart parse buffer; anything larger spills
// to disk before the size check rejects it.
const maxUploadMemory = 8 << 20

// complaintSubmitRequest is the JSON body for API-style submissions.
// Photo attachments are form-only; JSON clients submit without one.
type complaintSubmitRequest struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Stream     string `json:"stream"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	LabNumber  string `json:"lab_number"`
	Complaint  string `json:"complaint"`
}

// handleStudentForm handles GET (form) and POST (submit) for /{category}/student
func handleStudentForm(cat category.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			renderComplaintForm(w, r, cat, complaintDomain.Draft{Category: cat}, nil)
		case "POST":
			handleStudentSubmit(w, r, cat)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func renderComplaintForm(w http.ResponseWriter, r *http.Request, cat category.Category, draft complaintDomain.Draft, fieldErrors map[string]string) {
	renderTemplate(w, r, "complaint_form.html", map[string]any{
		"Category": cat,
		"IsLab":    cat == category.Lab,
		"Form":     draft,
		"Errors":   fieldErrors,
	})
}

func handleStudentSubmit(w http.ResponseWriter, r *http.Request, cat category.Category) {
	clientID, ok := middleware.ClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing client identity", http.StatusBadRequest)
		return
	}

	var draft complaintDomain.Draft
	var photo *orchestrators.PhotoUpload

	if isJSONRequest(r) {
		var req complaintSubmitRequest
		if err := strictDecode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		draft = complaintDomain.Draft{
			Category:   cat,
			Name:       req.Name,
			RollNumber: req.RollNumber,
			Stream:     req.Stream,
			Phone:      req.Phone,
			Email:      req.Email,
			LabNumber:  req.LabNumber,
			Complaint:  req.Complaint,
		}
	} else {
		if err := parseComplaintForm(r); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		draft = complaintDomain.Draft{
			Category:   cat,
			Name:       r.FormValue("name"),
			RollNumber: r.FormValue("roll_number"),
			Stream:     r.FormValue("stream"),
			Phone:      r.FormValue("phone"),
			Email:      r.FormValue("email"),
			LabNumber:  r.FormValue("lab_number"),
			Complaint:  r.FormValue("complaint"),
		}
		if cat == category.Lab {
			if file, header, err := r.FormFile("photo"); err == nil {
				defer file.Close()
				photo = &orchestrators.PhotoUpload{
					ContentType: header.Header.Get("Content-Type"),
					Size:        header.Size,
					Reader:      file,
				}
			}
		}
	}

	cmd := orchestrators.SubmitComplaintCommand{
		ClientID: clientID,
		Draft:    draft,
		Photo:    photo,
	}
	deps := orchestrators.SubmitComplaintDeps{
		API:       backend,
		Receipts:  stores.ReceiptStore,
		Email:     emailSender,
		EmailFrom: emailFromAddress,
		ReplyTo:   emailReplyTo,
		Flights:   flights,
	}

	result, err := orchestrators.ExecuteSubmitComplaint(r.Context(), cmd, deps)
	if err != nil {
		respondSubmitError(w, r, cat, draft, err)
		return
	}

	if isJSONRequest(r) {
		writeJSON(w, http.StatusCreated, map[string]string{"complaint_id": result.ComplaintID})
		return
	}
	pushNotification(r, notificationDomain.LevelSuccess, "Complaint submitted successfully")
	pushNotification(r, notificationDomain.LevelSuccess, "You'll receive email updates")
	http.Redirect(w, r, "/"+string(cat)+"/student/success", http.StatusSeeOther)
}

func parseComplaintForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

func respondSubmitError(w http.ResponseWriter, r *http.Request, cat category.Category, draft complaintDomain.Draft, err error) {
	var verr *orchestrators.ValidationError
	var apiErr *complaintapi.APIError

	switch {
	case errors.As(err, &verr):
		if isJSONRequest(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
			return
		}
		renderComplaintForm(w, r, cat, draft, verr.Fields)
	case errors.Is(err, orchestrators.ErrPhotoTooLarge):
		if isJSONRequest(r) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
			return
		}
		renderComplaintForm(w, r, cat, draft, map[string]string{"photo": err.Error()})
	case errors.Is(err, orchestrators.ErrSubmissionInFlight):
		if isJSONRequest(r) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		pushNotification(r, notificationDomain.LevelError, "A submission is already in progress")
		renderComplaintForm(w, r, cat, draft, nil)
	case errors.As(err, &apiErr):
		// The backend's detail message is surfaced verbatim.
		if isJSONRequest(r) {
			writeJSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Detail})
			return
		}
		pushNotification(r, notificationDomain.LevelError, apiErr.Error())
		renderComplaintForm(w, r, cat, draft, nil)
	default:
		if isJSONRequest(r) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Failed to submit complaint"})
			return
		}
		pushNotification(r, notificationDomain.LevelError, "Failed to submit complaint")
		renderComplaintForm(w, r, cat, draft, nil)
	}
}

// handleSubmitSuccess handles GET /{category}/student/success. The page
// shows the confirmation and navigates back to the landing page after a
// short pause.
func handleSubmitSuccess(cat category.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		renderTemplate(w, r, "submit_success.html", map[string]any{
			"Category":     cat,
			"RedirectTo":   "/",
			"DelaySeconds": 2,
		})
	}
}

package web

import (
	"errors"
	"net/http"

	"complaintdesk/internal/adapters/complaintapi"
	"complaintdesk/internal/adapters/http/middleware"
	sessionStore "complaintdesk/internal/adapters/storage/session"
	"complaintdesk/internal/application/orchestrators"
	"complaintdesk/internal/application/projections"
	"complaintdesk/internal/domain/category"
	"complaintdesk/internal/domain/credentials"
	notificationDomain "complaintdesk/internal/domain/notification"
	domainSession "complaintdesk/internal/domain/session"
)

// adminAuthRequest is the JSON body for API-style login and signup.
type adminAuthRequest struct {
	Mode     string `json:"mode"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// parseModeOrLogin maps anything outside the known modes to the default
// login tab.
func parseModeOrLogin(raw string) credentials.Mode {
	mode, err := credentials.ParseMode(raw)
	if err != nil {
		return credentials.ModeLogin
	}
	return mode
}

// handleAdminAuth handles GET (form) and POST (authenticate) for
// /{category}/admin/auth
func handleAdminAuth(cat category.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			// If already signed in, skip straight to the dashboard.
			if clientID, ok := middleware.ClientIDFromContext(r.Context()); ok {
				if _, err := stores.SessionStore.Get(r.Context(), clientID, cat); err == nil {
					http.Redirect(w, r, "/"+string(cat)+"/admin/dashboard", http.StatusSeeOther)
					return
				}
			}
			mode := parseModeOrLogin(r.URL.Query().Get("mode"))
			renderAuthForm(w, r, cat, mode, credentials.Credentials{}, nil)
		case "POST":
			handleAdminAuthPost(w, r, cat)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func renderAuthForm(w http.ResponseWriter, r *http.Request, cat category.Category, mode credentials.Mode, creds credentials.Credentials, fieldErrors map[string]string) {
	renderTemplate(w, r, "admin_auth.html", map[string]any{
		"Category": cat,
		"Mode":     mode,
		"IsSignup": mode == credentials.ModeSignup,
		"Form":     creds,
		"Errors":   fieldErrors,
	})
}

func handleAdminAuthPost(w http.ResponseWriter, r *http.Request, cat category.Category) {
	clientID, ok := middleware.ClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing client identity", http.StatusBadRequest)
		return
	}

	var creds credentials.Credentials
	if isJSONRequest(r) {
		var req adminAuthRequest
		if err := strictDecode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		creds = credentials.Credentials{
			Mode:     parseModeOrLogin(req.Mode),
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		creds = credentials.Credentials{
			Mode:     parseModeOrLogin(r.FormValue("mode")),
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}
	}

	cmd := orchestrators.AdminAuthCommand{
		ClientID: clientID,
		Category: cat,
		Creds:    creds,
	}
	deps := orchestrators.AdminAuthDeps{
		API:      backend,
		Sessions: stores.SessionStore,
		Flights:  flights,
	}

	result, err := orchestrators.ExecuteAdminAuth(r.Context(), cmd, deps)
	if err != nil {
		respondAuthError(w, r, cat, creds, err)
		return
	}

	if isJSONRequest(r) {
		writeJSON(w, http.StatusOK, map[string]string{
			"admin_name":  result.Admin.Name,
			"admin_email": result.Admin.Email,
		})
		return
	}
	pushNotification(r, notificationDomain.LevelSuccess, "Signed in to the "+cat.DisplayName()+" admin dashboard")
	http.Redirect(w, r, "/"+string(cat)+"/admin/dashboard", http.StatusSeeOther)
}

func respondAuthError(w http.ResponseWriter, r *http.Request, cat category.Category, creds credentials.Credentials, err error) {
	fallback := "login failed"
	if creds.Mode == credentials.ModeSignup {
		fallback = "signup failed"
	}

	var verr *orchestrators.ValidationError
	var apiErr *complaintapi.APIError

	switch {
	case errors.As(err, &verr):
		if isJSONRequest(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
			return
		}
		renderAuthForm(w, r, cat, creds.Mode, creds, verr.Fields)
	case errors.Is(err, orchestrators.ErrSubmissionInFlight):
		if isJSONRequest(r) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		pushNotification(r, notificationDomain.LevelError, "An attempt is already in progress")
		renderAuthForm(w, r, cat, creds.Mode, creds, nil)
	case errors.As(err, &apiErr):
		if isJSONRequest(r) {
			writeJSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Detail})
			return
		}
		pushNotification(r, notificationDomain.LevelError, apiErr.Error())
		renderAuthForm(w, r, cat, creds.Mode, creds, nil)
	default:
		if isJSONRequest(r) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": fallback})
			return
		}
		pushNotification(r, notificationDomain.LevelError, fallback)
		renderAuthForm(w, r, cat, creds.Mode, creds, nil)
	}
}

// handleAdminDashboard handles GET /{category}/admin/dashboard. The session
// gate has already run; a stale token is only discovered when the backend
// rejects the list call, at which point the session is discarded and the
// admin is sent back to the auth screen.
func handleAdminDashboard(cat category.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		sess, err := currentSession(r, cat)
		if err != nil {
			http.Redirect(w, r, "/"+string(cat)+"/admin/auth", http.StatusSeeOther)
			return
		}

		query := projections.GetDashboardQuery{Category: cat, Token: sess.Token}
		result, err := projections.QueryGetDashboard(r.Context(), query, projections.GetDashboardDeps{API: backend})
		if err != nil {
			var apiErr *complaintapi.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
				discardSession(w, r, cat, sess.ClientID)
				return
			}
			internalError(w, err)
			return
		}

		if !isHTMLRequest(r) {
			writeJSON(w, http.StatusOK, result)
			return
		}
		renderTemplate(w, r, "admin_dashboard.html", map[string]any{
			"Category":     cat,
			"AdminName":    sess.Admin.Name,
			"Complaints":   result.Complaints,
			"Total":        result.Total,
			"StatusCounts": result.StatusCounts,
			"Statuses":     []string{"pending", "in_progress", "resolved", "rejected"},
		})
	}
}

// handleUpdateStatus handles POST /{category}/admin/complaints/status
func handleUpdateStatus(cat category.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		sess, err := currentSession(r, cat)
		if err != nil {
			http.Redirect(w, r, "/"+string(cat)+"/admin/auth", http.StatusSeeOther)
			return
		}

		var complaintID, status string
		if isJSONRequest(r) {
			var req struct {
				ComplaintID string `json:"complaint_id"`
				Status      string `json:"status"`
			}
			if err := strictDecode(r, &req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
				return
			}
			complaintID, status = req.ComplaintID, req.Status
		} else {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			complaintID, status = r.FormValue("complaint_id"), r.FormValue("status")
		}

		cmd := orchestrators.UpdateStatusCommand{
			Category:    cat,
			Token:       sess.Token,
			ComplaintID: complaintID,
			Status:      status,
		}
		err = orchestrators.ExecuteUpdateStatus(r.Context(), cmd, orchestrators.UpdateStatusDeps{API: backend})
		if err != nil {
			respondStatusError(w, r, cat, sess.ClientID, err)
			return
		}

		if isJSONRequest(r) {
			writeJSON(w, http.StatusOK, map[string]string{"status": status})
			return
		}
		pushNotification(r, notificationDomain.LevelSuccess, "Complaint status updated")
		http.Redirect(w, r, "/"+string(cat)+"/admin/dashboard", http.StatusSeeOther)
	}
}

func respondStatusError(w http.ResponseWriter, r *http.Request, cat category.Category, clientID string, err error) {
	var apiErr *complaintapi.APIError
	switch {
	case errors.Is(err, orchestrators.ErrUnknownStatus):
		if isJSONRequest(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		pushNotification(r, notificationDomain.LevelError, "Unknown complaint status")
		http.Redirect(w, r, "/"+string(cat)+"/admin/dashboard", http.StatusSeeOther)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		discardSession(w, r, cat, clientID)
	case errors.As(err, &apiErr):
		if isJSONRequest(r) {
			writeJSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Detail})
			return
		}
		pushNotification(r, notificationDomain.LevelError, apiErr.Error())
		http.Redirect(w, r, "/"+string(cat)+"/admin/dashboard", http.StatusSeeOther)
	default:
		if isJSONRequest(r) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Failed to update status"})
			return
		}
		pushNotification(r, notificationDomain.LevelError, "Failed to update status")
		http.Redirect(w, r, "/"+string(cat)+"/admin/dashboard", http.StatusSeeOther)
	}
}

// handleLogout handles POST /{category}/admin/logout
func handleLogout(cat category.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		clientID, ok := middleware.ClientIDFromContext(r.Context())
		if ok {
			if err := stores.SessionStore.Delete(r.Context(), clientID, cat); err != nil {
				internalError(w, err)
				return
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// currentSession loads the stored admin session for the requesting client.
func currentSession(r *http.Request, cat category.Category) (domainSession.AdminSession, error) {
	clientID, ok := middleware.ClientIDFromContext(r.Context())
	if !ok {
		return domainSession.AdminSession{}, sessionStore.ErrNotFound
	}
	return stores.SessionStore.Get(r.Context(), clientID, cat)
}

// discardSession drops a session the backend rejected and restarts the auth
// flow. The stored token is the only copy, so a 401 means signing in again.
func discardSession(w http.ResponseWriter, r *http.Request, cat category.Category, clientID string) {
	if err := stores.SessionStore.Delete(r.Context(), clientID, cat); err != nil {
		internalError(w, err)
		return
	}
	if isJSONRequest(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "session expired"})
		return
	}
	pushNotification(r, notificationDomain.LevelError, "Session expired. Please log in again")
	http.Redirect(w, r, "/"+string(cat)+"/admin/auth", http.StatusSeeOther)
}

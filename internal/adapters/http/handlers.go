package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"complaintdesk/internal/adapters/http/middleware"
	"complaintdesk/internal/domain/category"
	notificationDomain "complaintdesk/internal/domain/notification"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// templatesDir is a variable so package tests can point at the local
// templates directory.
var templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// renderTemplate renders a page inside the shared layout. Pending
// notifications for the requesting client are drained here, so every page
// render is also the notification sink's read side.
func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Notifications"]; !ok {
		data["Notifications"] = drainNotifications(r)
	}

	funcMap := template.FuncMap{
		"csrfToken": func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"displayName": func(c category.Category) string { return c.DisplayName() },
		// Photo attachments arrive as data: URLs, which the template
		// engine's URL filter would otherwise reject.
		"photoURL": func(s string) template.URL {
			if strings.HasPrefix(s, "data:image/") {
				return template.URL(s)
			}
			return template.URL("")
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// drainNotifications consumes all pending flashes for the requesting client.
// A store failure here only loses a toast, so it logs and returns nothing.
func drainNotifications(r *http.Request) []notificationDomain.Notification {
	clientID, ok := middleware.ClientIDFromContext(r.Context())
	if !ok || stores == nil || stores.FlashStore == nil {
		return nil
	}
	notifications, err := stores.FlashStore.Consume(r.Context(), clientID)
	if err != nil {
		slog.Error("flash_consume_failed", "error", err.Error())
		return nil
	}
	return notifications
}

// pushNotification writes a one-shot notification for the client's next
// render. Best-effort: a failed write is logged and dropped.
func pushNotification(r *http.Request, level notificationDomain.Level, message string) {
	clientID, ok := middleware.ClientIDFromContext(r.Context())
	if !ok || stores == nil || stores.FlashStore == nil {
		return
	}
	n := notificationDomain.Notification{
		ID:        generateID(),
		ClientID:  clientID,
		Level:     level,
		Message:   message,
		CreatedAt: timeNow().UTC(),
	}
	if err := stores.FlashStore.Push(r.Context(), n); err != nil {
		slog.Error("flash_push_failed", "error", err.Error())
	}
}

// registerRoutes wires the fixed screen graph. Every screen past the landing
// page exists once per category; unknown paths fall through to the landing
// page.
func registerRoutes(mux *http.ServeMux) {
	for _, cat := range category.All {
		prefix := "/" + string(cat)
		gate := middleware.RequireAdminSession(cat, stores.SessionStore)

		mux.HandleFunc(prefix+"/role", handleRoleSelection(cat))
		mux.HandleFunc(prefix+"/student", handleStudentForm(cat))
		mux.HandleFunc(prefix+"/student/success", handleSubmitSuccess(cat))
		mux.HandleFunc(prefix+"/admin/auth", handleAdminAuth(cat))
		mux.Handle(prefix+"/admin/dashboard", gate(http.HandlerFunc(handleAdminDashboard(cat))))
		mux.Handle(prefix+"/admin/complaints/status", gate(http.HandlerFunc(handleUpdateStatus(cat))))
		mux.HandleFunc(prefix+"/admin/logout", handleLogout(cat))
	}
	mux.HandleFunc("/", handleLanding)
}

// handleLanding handles GET / and every unmatched path. Falling back to the
// landing page keeps stale links inside the portal instead of a bare 404.
func handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	renderTemplate(w, r, "landing.html", map[string]any{
		"Categories": category.All,
	})
}

// handleRoleSelection handles GET /{category}/role
func handleRoleSelection(cat category.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		renderTemplate(w, r, "role_selection.html", map[string]any{
			"Category": cat,
		})
	}
}

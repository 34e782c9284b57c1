package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestMux builds the full handler chain against a fake backend.
func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	_, server := newFakeBackend(t)
	sessions, flashes, receipts := setupHandlers(t, server.URL)

	RateLimitPerSecond = 1000
	return NewMux("../../../static", &Stores{
		SessionStore: sessions,
		FlashStore:   flashes,
		ReceiptStore: receipts,
	}, backend)
}

func TestRoutes_LandingPage(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "/lab/role") || !strings.Contains(body, "/icc/role") {
		t.Error("landing page missing category links")
	}
}

func TestRoutes_UnknownPathFallsBackToLanding(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest("GET", "/no/such/screen", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 landing fallback", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Campus Complaint Portal") {
		t.Error("fallback did not render the landing page")
	}
}

func TestRoutes_ClientIdentityCookieAssigned(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "portal_client" && len(c.Value) == 64 {
			found = true
		}
	}
	if !found {
		t.Error("no client identity cookie assigned")
	}
}

func TestRoutes_DashboardGatedWithoutSession(t *testing.T) {
	mux := newTestMux(t)

	for _, cat := range []string{"lab", "icc"} {
		req := httptest.NewRequest("GET", "/"+cat+"/admin/dashboard", nil)
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s dashboard status = %d, want 303", cat, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/"+cat+"/admin/auth" {
			t.Errorf("%s dashboard redirect = %q", cat, loc)
		}
	}
}

func TestRoutes_StudentFormRenders(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest("GET", "/lab/student", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="lab_number"`) {
		t.Error("lab form missing lab_number field")
	}
	if !strings.Contains(body, `name="photo"`) {
		t.Error("lab form missing photo upload")
	}
}

func TestRoutes_ICCFormOmitsLabFields(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest("GET", "/icc/student", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, `name="lab_number"`) {
		t.Error("icc form should not carry a lab_number field")
	}
	if strings.Contains(body, `name="photo"`) {
		t.Error("icc form should not carry a photo upload")
	}
}

func TestRoutes_SecurityHeadersPresent(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options header")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}

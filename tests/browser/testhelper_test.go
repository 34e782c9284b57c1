package browser_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"complaintdesk/internal/adapters/complaintapi"
	emailPkg "complaintdesk/internal/adapters/email"
	web "complaintdesk/internal/adapters/http"
	"complaintdesk/internal/adapters/http/middleware"
	"complaintdesk/internal/adapters/storage"
	flashStore "complaintdesk/internal/adapters/storage/flash"
	receiptStore "complaintdesk/internal/adapters/storage/receipt"
	sessionStore "complaintdesk/internal/adapters/storage/session"
)

// fakeBackend is an in-process stand-in for the external complaint backend.
type fakeBackend struct {
	mu         sync.Mutex
	complaints []map[string]string
}

func (fb *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	for _, realm := range []string{"lab-admin", "icc-admin"} {
		mux.HandleFunc("/api/auth/"+realm+"/login", func(w http.ResponseWriter, r *http.Request) {
			var req struct{ Email, Password string }
			json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "TestPass123" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"token": "test-token",
				"admin": map[string]string{"id": "a1", "name": "Test Admin", "email": req.Email},
			})
		})
	}

	for _, kind := range []string{"lab", "icc"} {
		path := "/api/" + kind + "-complaints"
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == "POST" {
				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				fb.mu.Lock()
				id := fmt.Sprintf("c-%d", len(fb.complaints)+1)
				rec := map[string]string{
					"id":         id,
					"name":       fmt.Sprint(body["name"]),
					"status":     "pending",
					"created_at": time.Now().UTC().Format(time.RFC3339),
				}
				fb.complaints = append(fb.complaints, rec)
				fb.mu.Unlock()
				json.NewEncoder(w).Encode(map[string]string{"message": "recorded", "complaint_id": id})
				return
			}
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Token expired"})
				return
			}
			fb.mu.Lock()
			defer fb.mu.Unlock()
			json.NewEncoder(w).Encode(fb.complaints)
		})
	}

	return mux
}

// testApp holds the running portal, fake backend, and Playwright handles.
type testApp struct {
	BaseURL string
	Backend *fakeBackend
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp starts the fake backend and a fully wired portal over a temp
// SQLite DB, then launches a headless browser against it.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	fb := &fakeBackend{}
	backendSrv := httptest.NewServer(fb.handler())
	t.Cleanup(backendSrv.Close)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	stores := &web.Stores{
		SessionStore: sessionStore.NewSQLiteStore(db),
		FlashStore:   flashStore.NewSQLiteStore(db),
		ReceiptStore: receiptStore.NewSQLiteStore(db),
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	web.SetEmailSender(emailPkg.NewNoopSender(), "portal@test", "reply@test")
	mux := web.NewMux("static", stores, complaintapi.New(backendSrv.URL, nil))
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		Backend: fb,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}

package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	"complaintdesk/internal/adapters/complaintapi"
	emailPkg "complaintdesk/internal/adapters/email"
	web "complaintdesk/internal/adapters/http"
	"complaintdesk/internal/adapters/storage"
	flashStore "complaintdesk/internal/adapters/storage/flash"
	receiptStore "complaintdesk/internal/adapters/storage/receipt"
	sessionStore "complaintdesk/internal/adapters/storage/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// The backend owns complaints and admin accounts; the portal only needs
	// its base URL.
	backendURL := os.Getenv("PORTAL_BACKEND_URL")
	if backendURL == "" {
		log.Fatal("PORTAL_BACKEND_URL is required")
	}
	api := complaintapi.New(backendURL, nil)

	// Local state (sessions, flashes, receipts) lives in SQLite with WAL
	// mode and a busy timeout.
	dbPath := envOrDefault("PORTAL_DB", "complaintdesk.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Run database migrations
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	stores := &web.Stores{
		SessionStore: sessionStore.NewSQLiteStore(db),
		FlashStore:   flashStore.NewSQLiteStore(db),
		ReceiptStore: receiptStore.NewSQLiteStore(db),
	}

	// Configure email sender
	resendKey := os.Getenv("PORTAL_RESEND_KEY")
	emailFrom := envOrDefault("PORTAL_RESEND_FROM", "Campus Complaint Portal <noreply@campus.edu>")
	emailReply := envOrDefault("PORTAL_REPLY_TO", "support@campus.edu")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("PORTAL_ENV") == "production" {
			log.Println("WARNING: PORTAL_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set PORTAL_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux(envOrDefault("PORTAL_STATIC_DIR", "static"), stores, api)

	addr := envOrDefault("PORTAL_ADDR", ":8080")
	log.Printf("Complaintdesk %s starting on %s (env=%s, backend=%s, schema=%d)", version, addr, envOrDefault("PORTAL_ENV", "development"), backendURL, storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

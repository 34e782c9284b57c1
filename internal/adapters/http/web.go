package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"complaintdesk/internal/adapters/complaintapi"
	"complaintdesk/internal/adapters/email"
	"complaintdesk/internal/adapters/http/middleware"
	flashStore "complaintdesk/internal/adapters/storage/flash"
	receiptStore "complaintdesk/internal/adapters/storage/receipt"
	sessionStore "complaintdesk/internal/adapters/storage/session"
	"complaintdesk/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	SessionStore sessionStore.Store
	FlashStore   flashStore.Store
	ReceiptStore receiptStore.Store
}

// loadCSRFKey reads the CSRF secret from PORTAL_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("PORTAL_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("PORTAL_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("PORTAL_ENV") == "production" {
		log.Fatal("PORTAL_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (forms won't survive restart). Set PORTAL_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global backend client (set by NewMux)
var backend *complaintapi.Client

// Global in-flight guard (set by NewMux)
var flights *orchestrators.FlightRegistry

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// NewMux wires HTTP handlers for the portal.
func NewMux(staticDir string, s *Stores, api *complaintapi.Client) http.Handler {
	stores = s
	backend = api
	flights = orchestrators.NewFlightRegistry()
	middleware.SecureCookies = os.Getenv("PORTAL_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Logging -> RateLimit -> Identity -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.ClientIdentity,
		middleware.RateLimit(limiter),
		middleware.Logging,
	)
}

package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"campusbooking/internal/adapters/http/middleware"
	"campusbooking/internal/adapters/http/perf"
	accountStore "campusbooking/internal/adapters/storage/account"
	auditStore "campusbooking/internal/adapters/storage/audit"
	incidentStore "campusbooking/internal/adapters/storage/incident"
	reservationStore "campusbooking/internal/adapters/storage/reservation"
	scheduleStore "campusbooking/internal/adapters/storage/schedule"
	schoolStore "campusbooking/internal/adapters/storage/school"
	spaceStore "campusbooking/internal/adapters/storage/space"
	"campusbooking/internal/adapters/token"
	"campusbooking/internal/application/orchestrators"
	"campusbooking/internal/application/scheduleindex"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	SchoolStore      schoolStore.Store
	SpaceStore       spaceStore.Store
	ClaimStore       scheduleStore.Store
	ReservationStore reservationStore.Store
	WindowStore      incidentStore.WindowStore
	ReportStore      incidentStore.ReportStore
	AuditStore       auditStore.Store
}

// Services holds the non-storage collaborators handlers depend on.
type Services struct {
	Index    *scheduleindex.Index
	Policy   orchestrators.WindowPolicy
	Notifier orchestrators.DecisionNotifier
	Tokens   *token.Service
}

// loadCSRFKey reads the CSRF secret from CAMPUSBOOKING_CSRF_KEY (hex-encoded,
// 32 bytes). In production, the key MUST be set. In development, a random key
// is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("CAMPUSBOOKING_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CAMPUSBOOKING_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("CAMPUSBOOKING_ENV") == "production" {
		log.Fatal("CAMPUSBOOKING_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set CAMPUSBOOKING_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global services instance (set by NewMux)
var services *Services

// Global session store instance
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// clock is swapped out in tests.
var clock = time.Now

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, svc *Services, collector *perf.Collector) http.Handler {
	stores = s
	services = svc
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("CAMPUSBOOKING_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	csrfKey := loadCSRFKey()
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
